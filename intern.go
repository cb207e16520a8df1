package intent

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Interner canonicalizes strings so equal actions and categories share one
// backing array. Interning only saves memory; equality never depends on it.
type Interner interface {
	Intern(s string) string
}

// MapInterner is an unbounded, concurrency-safe Interner. The zero value is
// ready to use.
type MapInterner struct {
	mu   sync.RWMutex
	pool map[string]string
}

func (m *MapInterner) Intern(s string) string {
	m.mu.RLock()
	if v, ok := m.pool[s]; ok {
		m.mu.RUnlock()
		return v
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.pool[s]; ok { // double-check
		return v
	}
	if m.pool == nil {
		m.pool = map[string]string{}
	}
	m.pool[s] = s
	return s
}

// Len returns the number of pooled strings.
func (m *MapInterner) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pool)
}

// LRUInterner is a bounded Interner evicting the least recently used strings.
type LRUInterner struct {
	cache *lru.Cache[string, string]
}

// NewLRUInterner returns an interner holding at most size strings.
func NewLRUInterner(size int) (*LRUInterner, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUInterner{cache: c}, nil
}

func (l *LRUInterner) Intern(s string) string {
	if v, ok := l.cache.Get(s); ok {
		return v
	}
	// ContainsOrAdd keeps the first writer's copy when two callers race.
	if found, _ := l.cache.ContainsOrAdd(s, s); found {
		if v, ok := l.cache.Get(s); ok {
			return v
		}
	}
	return s
}

// Len returns the number of pooled strings.
func (l *LRUInterner) Len() int { return l.cache.Len() }

// Intern rewrites the action and categories of d, its selector chain and
// nested descriptor extras through in. A nil Interner leaves d unchanged.
func (d *Descriptor) Intern(in Interner) {
	if d == nil || in == nil {
		return
	}
	if d.action != nil {
		a := in.Intern(*d.action)
		d.action = &a
	}
	if d.categories != nil {
		cats := make(map[string]struct{}, len(d.categories))
		for c := range d.categories {
			cats[in.Intern(c)] = struct{}{}
		}
		d.categories = cats
	}
	d.selector.Intern(in)
	d.extras.Range(func(_ string, v Value) bool {
		if nd, ok := v.v.(*Descriptor); ok {
			nd.Intern(in)
		}
		return true
	})
}
