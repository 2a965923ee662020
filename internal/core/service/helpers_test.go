package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/userdir-go/internal/core/domain"
	"github.com/yndnr/userdir-go/internal/storage/memory"
	"github.com/yndnr/userdir-go/internal/telemetry/logger"
)

// steppingClock returns a clock that advances one millisecond per call,
// so tokens derived for the same username never repeat.
func steppingClock() func() time.Time {
	var (
		mu sync.Mutex
		n  time.Duration
	)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(n * time.Millisecond)
	}
}

func newTestDirectory(t *testing.T, side domain.Side, mutate ...func(*DirectoryConfig)) *Directory {
	t.Helper()
	cfg := DefaultDirectoryConfig(side)
	for _, fn := range mutate {
		fn(&cfg)
	}
	d, err := NewDirectory(cfg, WithLogger(logger.Nop()), WithDirectoryClock(steppingClock()))
	require.NoError(t, err)
	return d
}

func insertUser(t *testing.T, s *memory.Store, name string, owner domain.Side) int {
	t.Helper()
	rec, err := domain.NewUserRecord(name, name+"@example.com", "pw-"+name, owner)
	require.NoError(t, err)
	id, err := s.Insert(rec)
	require.NoError(t, err)
	return id
}

// bindSession opens a session for id and binds it to the record, as a
// login does.
func bindSession(t *testing.T, m *SessionManager, s *memory.Store, id int) string {
	t.Helper()
	rec, err := s.Get(id)
	require.NoError(t, err)
	tok, err := m.Create(id, rec.Username)
	require.NoError(t, err)
	require.NoError(t, s.Update(id, func(r *domain.UserRecord) error {
		r.ResetLogin(tok)
		return nil
	}))
	return tok
}
