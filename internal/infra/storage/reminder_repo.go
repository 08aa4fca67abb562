package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jose-valero/marin-bot/internal/domain"
)

type ReminderRepo struct{ db *DB }

func NewReminderRepo(db *DB) *ReminderRepo { return &ReminderRepo{db: db} }

const reminderCols = `id, user_id, guild_id, card_id, channel_id, remind_at, type, message`

// Upsert por (user_id, type). El id se mantiene si la fila ya existía.
func (r *ReminderRepo) Upsert(ctx context.Context, s domain.ReminderSpec) (domain.Reminder, error) {
	now := toMillis(time.Now())
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.q(`
INSERT INTO reminders
  (user_id, guild_id, card_id, channel_id, remind_at, type, message, created_at, updated_at)
VALUES
  ($1,$2,$3,$4,$5,$6,$7,$8,$8)
ON CONFLICT (user_id, type) DO UPDATE SET
  guild_id   = EXCLUDED.guild_id,
  card_id    = EXCLUDED.card_id,
  channel_id = EXCLUDED.channel_id,
  remind_at  = EXCLUDED.remind_at,
  message    = EXCLUDED.message,
  updated_at = EXCLUDED.updated_at
RETURNING id
`), s.UserID, nullIfEmpty(s.GuildID), nullIfEmpty(s.CardID), s.ChannelID, toMillis(s.RemindAt), string(s.Type), s.Message, now).Scan(&id)
	if err != nil {
		return domain.Reminder{}, mapErr(err)
	}
	out := s.Reminder(id)
	out.RemindAt = fromMillis(toMillis(s.RemindAt))
	return out, nil
}

func (r *ReminderRepo) Get(ctx context.Context, id int64) (domain.Reminder, error) {
	return r.one(ctx, `SELECT `+reminderCols+` FROM reminders WHERE id = $1`, id)
}

func (r *ReminderRepo) FindByKey(ctx context.Context, userID string, t domain.ReminderType) (domain.Reminder, error) {
	return r.one(ctx, `SELECT `+reminderCols+` FROM reminders WHERE user_id = $1 AND type = $2`, userID, string(t))
}

// FindInWindow busca un recordatorio con remind_at en [from, to].
func (r *ReminderRepo) FindInWindow(ctx context.Context, userID string, t domain.ReminderType, from, to time.Time) (domain.Reminder, error) {
	return r.one(ctx, `
SELECT `+reminderCols+`
  FROM reminders
 WHERE user_id = $1 AND type = $2 AND remind_at BETWEEN $3 AND $4
 LIMIT 1
`, userID, string(t), toMillis(from), toMillis(to))
}

func (r *ReminderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.q(`DELETE FROM reminders WHERE id = $1`), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List devuelve todos los pendientes, primero los que vencen antes.
func (r *ReminderRepo) List(ctx context.Context) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reminderCols+` FROM reminders ORDER BY remind_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *ReminderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders`).Scan(&n)
	return n, err
}

func (r *ReminderRepo) one(ctx context.Context, query string, args ...any) (domain.Reminder, error) {
	rem, err := scanReminder(r.db.QueryRowContext(ctx, r.db.q(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reminder{}, ErrNotFound
	}
	return rem, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(sc scanner) (domain.Reminder, error) {
	var (
		rem          domain.Reminder
		guild, card  sql.NullString
		remindAt     int64
		reminderType string
	)
	if err := sc.Scan(&rem.ID, &rem.UserID, &guild, &card, &rem.ChannelID, &remindAt, &reminderType, &rem.Message); err != nil {
		return domain.Reminder{}, err
	}
	rem.GuildID = guild.String
	rem.CardID = card.String
	rem.RemindAt = fromMillis(remindAt)
	rem.Type = domain.ReminderType(reminderType)
	return rem, nil
}
