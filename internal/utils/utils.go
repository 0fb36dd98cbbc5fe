package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// ParseDurationEnv accepts "15m", "10s" or a bare number of seconds. Quotes around the value are ignored.
func ParseDurationEnv(raw string) (time.Duration, error) {
	v := strings.Trim(strings.TrimSpace(raw), `"'`)
	if v == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("duration %q: want 10s, 5m or seconds: %w", v, err)
	}
	return d, nil
}

// ParseRedisURL splits a redis:// or rediss:// URL into the client settings the config keeps.
func ParseRedisURL(raw string) (addr, password string, db int, err error) {
	opts, err := redis.ParseURL(strings.TrimSpace(raw))
	if err != nil {
		return "", "", 0, err
	}
	return opts.Addr, opts.Password, opts.DB, nil
}

// IsPGUniqueViolation reports a unique index conflict, e.g. a second user with the same email.
func IsPGUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
