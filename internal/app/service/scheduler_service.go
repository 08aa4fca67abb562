package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/domain"
)

// Por encima de esto avisamos: suele ser un leak o carga anormal.
const defaultTimerCapacity = 1000

// PersistenceError: falló la escritura/lectura durable; no se aplicó nada.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "reminder store " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Deliverer es el paso final de un recordatorio (ver DeliveryService).
type Deliverer interface {
	Deliver(ctx context.Context, id int64)
}

// SchedulerService es el motor: store durable + tabla de timers en memoria.
type SchedulerService struct {
	store    ReminderStore
	deliver  Deliverer
	errs     ErrorSink
	log      zerolog.Logger
	now      func() time.Time
	capacity int
	base     context.Context

	timers *timerTable

	mu       sync.Mutex
	inflight map[int64]struct{}
	wg       sync.WaitGroup
}

type SchedulerOption func(*SchedulerService)

func WithClock(now func() time.Time) SchedulerOption {
	return func(s *SchedulerService) { s.now = now }
}

func WithAfterFunc(f AfterFunc) SchedulerOption {
	return func(s *SchedulerService) { s.timers = newTimerTable(f) }
}

func WithCapacity(n int) SchedulerOption {
	return func(s *SchedulerService) { s.capacity = n }
}

// WithBaseContext es el contexto con el que corren las entregas.
func WithBaseContext(ctx context.Context) SchedulerOption {
	return func(s *SchedulerService) { s.base = ctx }
}

func NewSchedulerService(store ReminderStore, d Deliverer, errs ErrorSink, log zerolog.Logger, opts ...SchedulerOption) *SchedulerService {
	s := &SchedulerService{
		store:    store,
		deliver:  d,
		errs:     errs,
		log:      log.With().Str("component", "timers").Logger(),
		now:      time.Now,
		capacity: defaultTimerCapacity,
		base:     context.Background(),
		timers:   newTimerTable(nil),
		inflight: make(map[int64]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetTimer hace upsert por (user, type) y recién después instala el timer.
func (s *SchedulerService) SetTimer(ctx context.Context, spec domain.ReminderSpec) (domain.Reminder, error) {
	r, err := s.store.Upsert(ctx, spec)
	if err != nil {
		return domain.Reminder{}, &PersistenceError{Op: "upsert", Err: err}
	}
	s.ScheduleNotification(r)
	return r, nil
}

// DeleteTimer borra de la DB y cancela el handle. Idempotente.
func (s *SchedulerService) DeleteTimer(ctx context.Context, id int64) error {
	if _, err := s.store.Delete(ctx, id); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.timers.cancel(id)
	return nil
}

// ScheduleNotification instala (o reemplaza) el handle del recordatorio.
// Si ya venció, dispara en otra goroutine.
func (s *SchedulerService) ScheduleNotification(r domain.Reminder) {
	delay := r.RemindAt.Sub(s.now())
	if delay <= 0 {
		s.timers.cancel(r.ID)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.fire(r.ID)
		}()
		return
	}

	id := r.ID
	n := s.timers.install(id, delay, func() {
		s.wg.Add(1)
		defer s.wg.Done()
		s.fire(id)
	})
	if n > s.capacity {
		msg := fmt.Sprintf("[WARN] timer table has %d active timers. This might indicate a leak or heavy load.", n)
		s.log.Warn().Int("active", n).Msg("timer table over capacity")
		s.errs.Report(msg)
	}
}

// Initialize reprograma todo lo pendiente. Es la única recuperación tras un reinicio.
func (s *SchedulerService) Initialize(ctx context.Context) error {
	pending, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load pending reminders")
		s.errs.Report("[ERROR] [timers] Error initializing: " + err.Error())
		return &PersistenceError{Op: "list", Err: err}
	}
	for _, r := range pending {
		s.ScheduleNotification(r)
	}
	s.log.Info().Int("pending", len(pending)).Msg("reminders loaded")
	return nil
}

// fire entrega como mucho una vez a la vez por id.
func (s *SchedulerService) fire(id int64) {
	s.mu.Lock()
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()
	s.deliver.Deliver(s.base, id)
}

// Active es la cantidad de timers instalados.
func (s *SchedulerService) Active() int { return s.timers.size() }

// Pending reporta si hay un handle instalado para id.
func (s *SchedulerService) Pending(id int64) bool { return s.timers.has(id) }

// Close cancela todo lo pendiente y espera las entregas en curso.
// Lo que quede en la DB se recupera con Initialize.
func (s *SchedulerService) Close() {
	s.timers.stopAll()
	s.wg.Wait()
}

// Wait espera las entregas que estén corriendo (para tests).
func (s *SchedulerService) Wait() { s.wg.Wait() }
