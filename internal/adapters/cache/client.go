package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func Connect(ctx context.Context, o Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ParseOptions accepts either a bare host:port or a redis:// URL.
func ParseOptions(raw, password string, db int) (Options, error) {
	if !strings.Contains(raw, "://") {
		return Options{Addr: raw, Password: password, DB: db}, nil
	}
	u, err := redis.ParseURL(raw)
	if err != nil {
		return Options{}, fmt.Errorf("redis url: %w", err)
	}
	o := Options{Addr: u.Addr, Password: u.Password, DB: u.DB}
	if o.Password == "" {
		o.Password = password
	}
	if o.DB == 0 {
		o.DB = db
	}
	return o, nil
}
