package erc

import (
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/event"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// Registry collects the messages of one project in registration order.
type Registry struct {
	items   []*Message
	index   map[Key]*Message
	pending map[Key]bool // ignored keys whose owner does not exist yet
	bus     event.Bus[*Message]
	logger  *zap.Logger
}

// NewRegistry returns an empty registry. A nil logger disables logging.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		index:   make(map[Key]*Message),
		pending: make(map[Key]bool),
		logger:  logger,
	}
}

// Register creates a hidden message. Registering the same key twice is a
// logic error.
func (r *Registry) Register(key Key, severity Severity, text string) (*Message, error) {
	if _, exists := r.index[key]; exists {
		return nil, fault.Logicf("erc.Registry.Register", "message %s already registered", key)
	}
	m := &Message{registry: r, key: key, severity: severity, text: text}
	if r.pending[key] {
		m.ignored = true
		delete(r.pending, key)
	}
	r.items = append(r.items, m)
	r.index[key] = m
	r.logger.Debug("erc message registered", zap.Stringer("key", key))
	r.bus.Publish(event.Added, m)
	return m, nil
}

func (r *Registry) unregister(m *Message) {
	if r.index[m.key] != m {
		return
	}
	delete(r.index, m.key)
	for i, item := range r.items {
		if item == m {
			r.items = append(r.items[:i:i], r.items[i+1:]...)
			break
		}
	}
	if m.ignored {
		// keep the user's decision in case the owner comes back (undo)
		r.pending[m.key] = true
	}
	m.registry = nil
	r.logger.Debug("erc message unregistered", zap.Stringer("key", m.key))
	r.bus.Publish(event.Removed, m)
}

// Get returns the registered message with the given key.
func (r *Registry) Get(key Key) (*Message, bool) {
	m, ok := r.index[key]
	return m, ok
}

// Len returns the number of registered messages.
func (r *Registry) Len() int { return len(r.items) }

// Messages returns all registered messages in registration order.
func (r *Registry) Messages() []*Message {
	return append([]*Message(nil), r.items...)
}

// Active returns the visible, not ignored messages in registration order.
func (r *Registry) Active() []*Message {
	var out []*Message
	for _, m := range r.items {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}

// Subscribe registers fn for added, changed and removed events.
func (r *Registry) Subscribe(fn event.Handler[*Message]) func() {
	return r.bus.Subscribe(fn)
}

// IgnoredKeys returns the keys of the ignored messages followed by the
// ignored keys whose owners are not registered.
func (r *Registry) IgnoredKeys() []Key {
	var keys []Key
	for _, m := range r.items {
		if m.ignored {
			keys = append(keys, m.key)
		}
	}
	return append(keys, r.pendingKeys()...)
}

// SetIgnoredKeys replaces the ignore state. Keys of messages that are not
// registered yet are applied when they get registered.
func (r *Registry) SetIgnoredKeys(keys []Key) {
	set := make(map[Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	r.pending = make(map[Key]bool)
	for k := range set {
		if _, ok := r.index[k]; !ok {
			r.pending[k] = true
		}
	}
	for _, m := range r.items {
		m.SetIgnored(set[m.key])
	}
}
