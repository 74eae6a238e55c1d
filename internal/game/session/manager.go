package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

// Session is one connected player.
type Session struct {
	// ID uniquely identifies this connection.
	ID uuid.UUID
	// Player is the player object the connection controls.
	Player db.Ref
	// Name is the player's name at connect time, for logging.
	Name string
	// ConnectedAt is when the session was created.
	ConnectedAt time.Time
	// Outbox queues lines for the connection.
	Outbox *Outbox
}

// Manager tracks connected players and delivers text to them.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[db.Ref]*Session
	bufferSize int
	logger     *zap.Logger
}

// NewManager creates an empty Manager whose outboxes hold bufferSize lines.
//
// Precondition: logger must be non-nil.
func NewManager(bufferSize int, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:   make(map[db.Ref]*Session),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Connect registers a session for player.
//
// Postcondition: Returns the new Session, or an error if player is already
// connected.
func (m *Manager) Connect(player db.Ref, name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[player]; exists {
		return nil, fmt.Errorf("player %s already connected", player)
	}

	id := uuid.New()
	sess := &Session{
		ID:          id,
		Player:      player,
		Name:        name,
		ConnectedAt: time.Now(),
		Outbox:      NewOutbox(id.String(), m.bufferSize),
	}
	m.sessions[player] = sess
	m.logger.Info("player connected",
		zap.String("session", id.String()),
		zap.Stringer("player", player),
		zap.String("name", name),
	)
	return sess, nil
}

// Disconnect removes player's session and closes its outbox.
//
// Postcondition: Returns an error if player was not connected.
func (m *Manager) Disconnect(player db.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[player]
	if !exists {
		return fmt.Errorf("player %s not connected", player)
	}
	_ = sess.Outbox.Close()
	delete(m.sessions, player)
	m.logger.Info("player disconnected",
		zap.String("session", sess.ID.String()),
		zap.Stringer("player", player),
		zap.Duration("connected_for", time.Since(sess.ConnectedAt)),
	)
	return nil
}

// Get returns player's session.
//
// Postcondition: Returns (session, true) if connected, or (nil, false).
func (m *Manager) Get(player db.Ref) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[player]
	return sess, ok
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Players returns the connected players in ref order.
func (m *Manager) Players() []db.Ref {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]db.Ref, 0, len(m.sessions))
	for ref := range m.sessions {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Deliver queues text for player. Text for players without a session, or
// whose outbox is full, is dropped.
func (m *Manager) Deliver(player db.Ref, text string) {
	m.mu.RLock()
	sess, ok := m.sessions[player]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug("dropping text for disconnected player", zap.Stringer("player", player))
		return
	}
	if err := sess.Outbox.Push(text); err != nil {
		m.logger.Debug("dropping text", zap.Stringer("player", player), zap.Error(err))
	}
}
