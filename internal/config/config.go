package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type Settings struct {
	BotToken         string  `env:"BOT_TOKEN,required"`
	DBDSN            string  `env:"DB_DSN,required"`
	SuperAdminIDs    []int64 `env:"SUPER_ADMIN_IDS,required" envSeparator:","`
	StaticDir        string  `env:"STATIC_DIR" envDefault:"static"`
}

func Load(ctx context.Context) (*Settings, *pgxpool.Pool, error) {
	_ = godotenv.Load()

	set := &Settings{}
	if err := env.Parse(set); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}
	if len(set.SuperAdminIDs) == 0 {
		return nil, nil, fmt.Errorf("SUPER_ADMIN_IDS must contain at least one value")
	}

	cfg, err := pgxpool.ParseConfig(set.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse db dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return set, pool, nil
}
