package routerpool

import (
	"container/list"
	"log/slog"
	"sync"
)

// MaxCache is the default pool size cap before LRU eviction kicks in.
const MaxCache = 200

// Factory constructs a fresh agent instance for (name, sender). The pool
// calls it only on a cache miss.
type Factory func(name, sender string) (any, error)

// key identifies a pooled instance. A missing sender_id (CLI/single-user
// use) collapses to the agent name alone.
type key struct {
	name   string
	sender string
}

func makeKey(name, sender string) key {
	return key{name: name, sender: sender}
}

// Pool maps (agent_name, sender_id) -> agent_instance with LRU eviction.
// The pool is the sole owner of agent instances; its internal state is
// mutated only under its own lock.
type Pool struct {
	mu      sync.Mutex
	factory Factory
	maxSize int
	logger  *slog.Logger

	order   *list.List // front = most recently used
	entries map[key]*list.Element
}

type poolEntry struct {
	key      key
	instance any
}

// NewPool builds a Pool backed by factory, evicting least-recently-used
// entries once size exceeds maxSize (0 = MaxCache default).
func NewPool(factory Factory, maxSize int, logger *slog.Logger) *Pool {
	if maxSize <= 0 {
		maxSize = MaxCache
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		factory: factory,
		maxSize: maxSize,
		logger:  logger,
		order:   list.New(),
		entries: make(map[key]*list.Element),
	}
}

// Get returns the cached instance for (name, sender), marking it
// most-recently-used. On a miss it builds one via the factory, inserts it,
// and evicts least-recently-used entries until the pool is back under cap.
func (p *Pool) Get(name, sender string) (any, error) {
	k := makeKey(name, sender)

	p.mu.Lock()
	if elem, ok := p.entries[k]; ok {
		p.order.MoveToFront(elem)
		instance := elem.Value.(*poolEntry).instance
		p.mu.Unlock()
		return instance, nil
	}
	p.mu.Unlock()

	instance, err := p.factory(name, sender)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have raced us to the same key; prefer the first
	// winner to keep "same (name,sender) returns the same instance" true.
	if elem, ok := p.entries[k]; ok {
		p.order.MoveToFront(elem)
		return elem.Value.(*poolEntry).instance, nil
	}

	elem := p.order.PushFront(&poolEntry{key: k, instance: instance})
	p.entries[k] = elem

	for p.order.Len() > p.maxSize {
		p.evictOldest()
	}

	return instance, nil
}

// evictOldest removes the least-recently-used entry. Must be called with
// p.mu held. Evictions are silent and idempotent.
func (p *Pool) evictOldest() {
	oldest := p.order.Back()
	if oldest == nil {
		return
	}
	p.order.Remove(oldest)
	delete(p.entries, oldest.Value.(*poolEntry).key)
}

// Len reports the current number of cached instances.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}
