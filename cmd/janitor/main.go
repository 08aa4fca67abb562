package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

// Borra filas de settings que no aportan nada (iguales a los defaults).
// Solo Postgres: con SQLite no hay lambda.

type result struct {
	UserRows  int64 `json:"user_rows"`
	GuildRows int64 `json:"guild_rows"`
}

var log = zerolog.New(os.Stdout).With().Timestamp().Str("component", "janitor").Logger()

func handler(ctx context.Context) (result, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || !strings.HasPrefix(dsn, "postgres") {
		log.Warn().Msg("DATABASE_URL empty or not postgres, nothing to do")
		return result{}, nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return result{}, fmt.Errorf("parse: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return result{}, fmt.Errorf("pool: %w", err)
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res result
	tag, err := pool.Exec(cctx, storage.CompactUserSettingsSQL)
	if err != nil {
		return res, fmt.Errorf("compact user settings: %w", err)
	}
	res.UserRows = tag.RowsAffected()

	tag, err = pool.Exec(cctx, storage.CompactGuildSettingsSQL)
	if err != nil {
		return res, fmt.Errorf("compact guild settings: %w", err)
	}
	res.GuildRows = tag.RowsAffected()

	log.Info().Int64("user_rows", res.UserRows).Int64("guild_rows", res.GuildRows).Msg("settings compacted")
	return res, nil
}

func main() { lambda.Start(handler) }
