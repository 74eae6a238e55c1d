// Package notify delivers text to players.
package notify

import (
	"sync"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/message"
)

// Transport carries a rendered line to a player's connection.
//
// Implementations MUST NOT block and MUST NOT call back into the world core.
type Transport interface {
	Deliver(player db.Ref, text string)
}

// Notifier renders catalog messages and hands them to a Transport.
type Notifier struct {
	db        *db.Database
	catalog   *message.Catalog
	transport Transport
}

// NewNotifier creates a Notifier.
//
// Precondition: all arguments must be non-nil.
func NewNotifier(d *db.Database, catalog *message.Catalog, transport Transport) *Notifier {
	return &Notifier{db: d, catalog: catalog, transport: transport}
}

// Catalog returns the message catalog used for rendering.
func (n *Notifier) Catalog() *message.Catalog {
	return n.catalog
}

// Notify delivers text to player.
func (n *Notifier) Notify(player db.Ref, text string) {
	n.transport.Deliver(player, text)
}

// NotifyExcept delivers text to every player in the chain starting at first
// other than except. Non-player entities in the chain are skipped.
func (n *Notifier) NotifyExcept(first, except db.Ref, text string) {
	for ref := range n.db.Enum(first) {
		if ref != except && n.db.IsPlayer(ref) {
			n.transport.Deliver(ref, text)
		}
	}
}

// Send renders key with args and delivers it to player.
func (n *Notifier) Send(player db.Ref, key message.Key, args ...any) {
	n.Notify(player, n.catalog.Format(key, args...))
}

// SendExcept renders key with args and delivers it with NotifyExcept.
func (n *Notifier) SendExcept(first, except db.Ref, key message.Key, args ...any) {
	n.NotifyExcept(first, except, n.catalog.Format(key, args...))
}

// Delivery is one line handed to a Recorder.
type Delivery struct {
	To   db.Ref
	Text string
}

// Recorder is a Transport that keeps every delivery in order.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Deliver records the line.
func (r *Recorder) Deliver(player db.Ref, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{To: player, Text: text})
}

// All returns a copy of every delivery so far.
func (r *Recorder) All() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// For returns the lines delivered to player, in order.
func (r *Recorder) For(player db.Ref) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, d := range r.deliveries {
		if d.To == player {
			out = append(out, d.Text)
		}
	}
	return out
}

// Reset discards all recorded deliveries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
