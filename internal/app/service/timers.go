package service

import (
	"sync"
	"time"
)

// Timer es lo mínimo de *time.Timer que usamos.
type Timer interface {
	Stop() bool
}

// AfterFunc es time.AfterFunc; los tests inyectan un reloj manual.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// timerTable: id de recordatorio -> handle pendiente. Cada instalación lleva
// un seq; el callback solo dispara si su seq sigue siendo el vigente, así un
// handle viejo que ya estaba corriendo cuando lo reemplazaron no dispara.
type timerTable struct {
	mu      sync.Mutex
	after   AfterFunc
	seq     uint64
	entries map[int64]timerEntry
}

type timerEntry struct {
	seq   uint64
	timer Timer
}

func newTimerTable(after AfterFunc) *timerTable {
	if after == nil {
		after = realAfterFunc
	}
	return &timerTable{after: after, entries: make(map[int64]timerEntry)}
}

// install reemplaza el handle de id y devuelve el tamaño de la tabla.
func (tt *timerTable) install(id int64, d time.Duration, fire func()) int {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if old, ok := tt.entries[id]; ok {
		old.timer.Stop()
	}
	tt.seq++
	seq := tt.seq
	t := tt.after(d, func() {
		if tt.claim(id, seq) {
			fire()
		}
	})
	tt.entries[id] = timerEntry{seq: seq, timer: t}
	return len(tt.entries)
}

// claim saca la entrada si (id, seq) sigue vigente.
func (tt *timerTable) claim(id int64, seq uint64) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	e, ok := tt.entries[id]
	if !ok || e.seq != seq {
		return false
	}
	delete(tt.entries, id)
	return true
}

func (tt *timerTable) cancel(id int64) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	e, ok := tt.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(tt.entries, id)
	return true
}

func (tt *timerTable) has(id int64) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	_, ok := tt.entries[id]
	return ok
}

func (tt *timerTable) size() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.entries)
}

func (tt *timerTable) stopAll() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for id, e := range tt.entries {
		e.timer.Stop()
		delete(tt.entries, id)
	}
}
