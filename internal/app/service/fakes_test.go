package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

// ---- store en memoria con la misma semántica de upsert que el real ----

type memStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]domain.Reminder
	upsertErr error
	listErr   error
}

func newMemStore(rs ...domain.Reminder) *memStore {
	s := &memStore{rows: make(map[int64]domain.Reminder)}
	for _, r := range rs {
		s.rows[r.ID] = r
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}
	return s
}

func (s *memStore) Upsert(_ context.Context, spec domain.ReminderSpec) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return domain.Reminder{}, s.upsertErr
	}
	for id, r := range s.rows {
		if r.UserID == spec.UserID && r.Type == spec.Type {
			nr := spec.Reminder(id)
			s.rows[id] = nr
			return nr, nil
		}
	}
	s.nextID++
	r := spec.Reminder(s.nextID)
	s.rows[r.ID] = r
	return r, nil
}

func (s *memStore) Get(_ context.Context, id int64) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return domain.Reminder{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *memStore) FindByKey(_ context.Context, userID string, t domain.ReminderType) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.UserID == userID && r.Type == t {
			return r, nil
		}
	}
	return domain.Reminder{}, storage.ErrNotFound
}

func (s *memStore) FindInWindow(_ context.Context, userID string, t domain.ReminderType, from, to time.Time) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.UserID == userID && r.Type == t && !r.RemindAt.Before(from) && !r.RemindAt.After(to) {
			return r, nil
		}
	}
	return domain.Reminder{}, storage.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	delete(s.rows, id)
	return ok, nil
}

func (s *memStore) List(_ context.Context) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Reminder, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ---- settings ----

type memUsers struct {
	mu   sync.Mutex
	rows map[string]domain.UserSettings
}

func newMemUsers(us ...domain.UserSettings) *memUsers {
	m := &memUsers{rows: make(map[string]domain.UserSettings)}
	for _, u := range us {
		m.rows[u.UserID] = u
	}
	return m
}

func (m *memUsers) Get(_ context.Context, userID string) (domain.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[userID]
	if !ok {
		return domain.UserSettings{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Upsert(_ context.Context, us domain.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[us.UserID] = us
	return nil
}

type memGuilds struct {
	mu   sync.Mutex
	rows map[string]domain.GuildSettings
}

func newMemGuilds(gs ...domain.GuildSettings) *memGuilds {
	m := &memGuilds{rows: make(map[string]domain.GuildSettings)}
	for _, g := range gs {
		m.rows[g.GuildID] = g
	}
	return m
}

func (m *memGuilds) Get(_ context.Context, guildID string) (domain.GuildSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.rows[guildID]
	if !ok {
		return domain.GuildSettings{}, storage.ErrNotFound
	}
	return g, nil
}

func (m *memGuilds) Upsert(_ context.Context, gs domain.GuildSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[gs.GuildID] = gs
	return nil
}

// ---- transporte ----

type sent struct {
	To   string
	Text string
}

type fakeChannels struct {
	mu   sync.Mutex
	err  error
	sent []sent
}

func (f *fakeChannels) SendChannel(_ context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{To: channelID, Text: text})
	return nil
}

type fakeDMs struct {
	mu   sync.Mutex
	err  error
	sent []sent
}

func (f *fakeDMs) SendDM(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{To: userID, Text: text})
	return nil
}

type fakeSink struct {
	mu      sync.Mutex
	reports []string
}

func (f *fakeSink) Report(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, text)
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type fakeDirectory struct {
	messages map[string]*discordgo.Message
	recent   []*discordgo.Message
	members  map[string]string
}

func (f *fakeDirectory) FetchMessage(_ context.Context, _, messageID string) (*discordgo.Message, error) {
	m, ok := f.messages[messageID]
	if !ok {
		return nil, domain.ErrChannelNotFound
	}
	return m, nil
}

func (f *fakeDirectory) RecentMessages(_ context.Context, _ string, limit int) ([]*discordgo.Message, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeDirectory) SearchMember(_ context.Context, _, query string) (string, error) {
	return f.members[query], nil
}

type announcement struct {
	ChannelID string
	Text      string
	Roles     []string
}

type fakeAnnouncer struct {
	mu      sync.Mutex
	err     error
	pings   []announcement
	prompts []announcement
}

func (f *fakeAnnouncer) Announce(_ context.Context, channelID, text string, roleIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pings = append(f.pings, announcement{ChannelID: channelID, Text: text, Roles: roleIDs})
	return nil
}

func (f *fakeAnnouncer) StaminaPrompt(_ context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.prompts = append(f.prompts, announcement{ChannelID: channelID, Text: text})
	return nil
}

// ---- timers manuales: nada dispara hasta que el test lo pide ----

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualTimers) after(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// fireLive dispara los timers no cancelados.
func (m *manualTimers) fireLive() {
	for _, t := range m.snapshot() {
		if !t.stopped {
			t.f()
		}
	}
}

// fireEverything dispara todo, incluso lo cancelado (callback ya en vuelo).
func (m *manualTimers) fireEverything() {
	for _, t := range m.snapshot() {
		t.f()
	}
}

func (m *manualTimers) snapshot() []*manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*manualTimer(nil), m.timers...)
}

// recorder es un Deliverer que solo anota.
type recorder struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recorder) Deliver(_ context.Context, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recorder) delivered() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}
