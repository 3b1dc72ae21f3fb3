package pipeline

import (
	"fmt"
	"sync"
	"time"

	"movie-finder-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultIdleTTL is how long a session may go untouched before it is reaped
const DefaultIdleTTL = 30 * time.Minute

// DefaultReapSchedule runs the reaper once a minute
const DefaultReapSchedule = "@every 1m"

// TopicCloser releases the subscribers of a closed session
type TopicCloser interface {
	CloseTopic(topic string)
}

// ManagerOptions configures a Manager
type ManagerOptions struct {
	Controller Options
	IdleTTL    time.Duration
}

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Manager owns the open sessions
type Manager struct {
	source   MovieSource
	trending TrendingRecorder
	pub      Publisher
	opts     ManagerOptions

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time

	cron *cron.Cron
}

// NewManager creates a Manager. pub may be nil; when it also implements
// TopicCloser its topics are closed together with their session.
func NewManager(source MovieSource, trending TrendingRecorder, pub Publisher, opts ManagerOptions) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		source:   source,
		trending: trending,
		pub:      pub,
		opts:     opts,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create opens and starts a new session
func (m *Manager) Create() *Controller {
	id := uuid.NewString()
	ctrl := NewController(id, m.source, m.trending, m.pub, m.opts.Controller)

	m.mu.Lock()
	m.sessions[id] = &session{ctrl: ctrl, lastSeen: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	log.Info().Str("session", id).Int("open", count).Msg("🎬 Session created")

	ctrl.Start()
	return ctrl
}

// Get returns the session and marks it as used
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = m.now()
	return s.ctrl, true
}

// Close ends one session. It reports false when the id is unknown.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.release(s.ctrl)
	return true
}

func (m *Manager) release(ctrl *Controller) {
	ctrl.Close()
	if closer, ok := m.pub.(TopicCloser); ok {
		closer.CloseTopic(ctrl.ID())
	}
	metrics.ActiveSessions.Dec()
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ReapIdle closes sessions not used within the idle TTL and returns how many it closed
func (m *Manager) ReapIdle() int {
	cutoff := m.now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var idle []*session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.release(s.ctrl)
	}
	if len(idle) > 0 {
		log.Info().Int("reaped", len(idle)).Msg("🧹 Idle sessions closed")
	}
	return len(idle)
}

// StartReaper runs ReapIdle on a cron schedule such as "@every 1m"
func (m *Manager) StartReaper(schedule string) error {
	if schedule == "" {
		schedule = DefaultReapSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.ReapIdle() }); err != nil {
		return fmt.Errorf("invalid session reap schedule %q: %w", schedule, err)
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	log.Info().Str("schedule", schedule).Dur("idle_ttl", m.opts.IdleTTL).Msg("⏰ Session reaper started")
	return nil
}

// Shutdown stops the reaper and closes every session
func (m *Manager) Shutdown() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	all := make([]*session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, s := range all {
		m.release(s.ctrl)
	}
}
