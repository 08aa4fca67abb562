package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jose-valero/marin-bot/internal/domain"
)

type GuildSettingsRepo struct{ db *DB }

func NewGuildSettingsRepo(db *DB) *GuildSettingsRepo { return &GuildSettingsRepo{db: db} }

func (r *GuildSettingsRepo) Get(ctx context.Context, guildID string) (domain.GuildSettings, error) {
	var t1, t2, t3 sql.NullString
	err := r.db.QueryRowContext(ctx, r.db.q(`
SELECT tier1_role_id, tier2_role_id, tier3_role_id
  FROM guild_settings
 WHERE guild_id = $1
`), guildID).Scan(&t1, &t2, &t3)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuildSettings{}, ErrNotFound
	}
	if err != nil {
		return domain.GuildSettings{}, err
	}
	return domain.GuildSettings{GuildID: guildID, Tier1RoleID: t1.String, Tier2RoleID: t2.String, Tier3RoleID: t3.String}, nil
}

func (r *GuildSettingsRepo) Upsert(ctx context.Context, g domain.GuildSettings) error {
	_, err := r.db.ExecContext(ctx, r.db.q(`
INSERT INTO guild_settings (guild_id, tier1_role_id, tier2_role_id, tier3_role_id, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id) DO UPDATE SET
  tier1_role_id = EXCLUDED.tier1_role_id,
  tier2_role_id = EXCLUDED.tier2_role_id,
  tier3_role_id = EXCLUDED.tier3_role_id,
  updated_at    = EXCLUDED.updated_at
`), g.GuildID, nullIfEmpty(g.Tier1RoleID), nullIfEmpty(g.Tier2RoleID), nullIfEmpty(g.Tier3RoleID), toMillis(time.Now()))
	return mapErr(err)
}

// DeleteEmpty borra guilds sin ningún rol configurado.
func (r *GuildSettingsRepo) DeleteEmpty(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, CompactGuildSettingsSQL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UserSettingsRepo struct{ db *DB }

func NewUserSettingsRepo(db *DB) *UserSettingsRepo { return &UserSettingsRepo{db: db} }

func (r *UserSettingsRepo) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	u := domain.UserSettings{UserID: userID}
	err := r.db.QueryRowContext(ctx, r.db.q(`
SELECT expedition, stamina, raid, raid_spawn, card_drop, dm_notifications
  FROM user_settings
 WHERE user_id = $1
`), userID).Scan(&u.Expedition, &u.Stamina, &u.Raid, &u.RaidSpawn, &u.CardDrop, &u.DMNotifications)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserSettings{}, ErrNotFound
	}
	if err != nil {
		return domain.UserSettings{}, err
	}
	return u, nil
}

func (r *UserSettingsRepo) Upsert(ctx context.Context, u domain.UserSettings) error {
	_, err := r.db.ExecContext(ctx, r.db.q(`
INSERT INTO user_settings
  (user_id, expedition, stamina, raid, raid_spawn, card_drop, dm_notifications, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  expedition       = EXCLUDED.expedition,
  stamina          = EXCLUDED.stamina,
  raid             = EXCLUDED.raid,
  raid_spawn       = EXCLUDED.raid_spawn,
  card_drop        = EXCLUDED.card_drop,
  dm_notifications = EXCLUDED.dm_notifications,
  updated_at       = EXCLUDED.updated_at
`), u.UserID, u.Expedition, u.Stamina, u.Raid, u.RaidSpawn, u.CardDrop, u.DMNotifications, toMillis(time.Now()))
	return mapErr(err)
}

func (r *UserSettingsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_settings`).Scan(&n)
	return n, err
}

// DeleteDefaults borra filas idénticas a los defaults (ausencia = defaults).
func (r *UserSettingsRepo) DeleteDefaults(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, CompactUserSettingsSQL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Queries de compactación; las usa también el janitor (pgxpool).
const (
	CompactUserSettingsSQL = `
DELETE FROM user_settings
 WHERE expedition AND stamina AND raid AND raid_spawn AND card_drop AND NOT dm_notifications`

	CompactGuildSettingsSQL = `
DELETE FROM guild_settings
 WHERE tier1_role_id IS NULL AND tier2_role_id IS NULL AND tier3_role_id IS NULL`
)
