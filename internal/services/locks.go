package services

import "sync"

// tournamentLocks serialises round mutations per tournament.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the tournament's mutex and returns its release.
func (l *tournamentLocks) lock(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
