// Package session keeps one engine per connected map client.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("too many active sessions")

// Config holds session settings.
type Config struct {
	IdleTTL      time.Duration `mapstructure:"idle_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	MaxSessions  int           `mapstructure:"max_sessions"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleTTL:      30 * time.Minute,
		ReapInterval: time.Minute,
		MaxSessions:  1000,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.IdleTTL <= 0 {
		return recommend.ErrInvalidConfig{Field: "session.idle_ttl", Reason: "must be positive"}
	}
	if c.ReapInterval <= 0 {
		return recommend.ErrInvalidConfig{Field: "session.reap_interval", Reason: "must be positive"}
	}
	if c.MaxSessions < 1 {
		return recommend.ErrInvalidConfig{Field: "session.max_sessions", Reason: "must be at least 1"}
	}
	return nil
}

// Session is one client's map.
type Session struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Engine    *engine.Engine         `json:"-"`
	Surface   *markers.MemorySurface `json:"-"`

	cancel   context.CancelFunc
	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Manager creates, looks up and expires sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog   engine.Catalog
	prefs     engine.PreferenceSource
	engineCfg engine.Config
	config    Config
	metrics   *engine.MetricsRecorder
	logger    zerolog.Logger
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewManager creates a session manager.
func NewManager(config Config, catalog engine.Catalog, prefs engine.PreferenceSource, engineCfg engine.Config) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		catalog:   catalog,
		prefs:     prefs,
		engineCfg: engineCfg,
		config:    config,
		metrics:   engine.NewMetricsRecorder(),
		logger:    log.With().Str("component", "sessions").Logger(),
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Create starts a new session with its own engine. The engine runs until the
// session is deleted or reaped, or ctx is done.
func (m *Manager) Create(ctx context.Context, id preference.Identity, pos *recommend.UserPosition) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.config.MaxSessions {
		return nil, ErrTooManySessions
	}

	surface := markers.NewMemorySurface()
	eng := engine.New(m.catalog, m.prefs, markers.NewReconciler(surface), m.engineCfg)
	eng.State().SetIdentity(id)
	if pos != nil {
		eng.State().SetPosition(*pos)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now(),
		Engine:    eng,
		Surface:   surface,
		cancel:    cancel,
	}
	s.touch(s.CreatedAt)
	m.sessions[s.ID] = s

	go eng.Run(runCtx)
	go eng.RunUserLocation(runCtx)

	m.metrics.SetActiveSessions(len(m.sessions))
	m.logger.Info().
		Str("session_id", s.ID).
		Bool("authenticated", id.Authenticated()).
		Msg("Session created")
	return s, nil
}

// Get returns a session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Delete stops and removes a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}
	stopSession(s)
	m.metrics.SetActiveSessions(n)
	m.logger.Info().Str("session_id", id).Msg("Session deleted")
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle for longer than the configured TTL and returns
// how many were removed.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.config.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		stopSession(s)
	}
	if len(expired) > 0 {
		m.metrics.SetActiveSessions(n)
		m.logger.Info().
			Int("reaped", len(expired)).
			Int("active", n).
			Msg("Reaped idle sessions")
	}
	return len(expired)
}

// Start reaps idle sessions periodically until ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	m.logger.Info().
		Dur("interval", m.config.ReapInterval).
		Dur("idle_ttl", m.config.IdleTTL).
		Msg("Starting session reaper")

	ticker := time.NewTicker(m.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Session reaper stopping (context cancelled)")
			return
		case <-m.stopChan:
			m.logger.Info().Msg("Session reaper stopping (stop signal)")
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Stop ends the reaper and every session.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		stopSession(s)
	}
	m.metrics.SetActiveSessions(0)
}

func stopSession(s *Session) {
	s.Engine.Stop()
	s.cancel()
}
