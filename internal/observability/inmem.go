package observability

import "sync"

type Inmem struct {
	mu     sync.Mutex
	last   []any
	max    int
	totals struct {
		cacheHits, cacheMiss int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveAPI(method, path string, status int, durMs float64) {
	m.push(struct {
		Kind         string
		Method, Path string
		Status       int
		Dur          float64
	}{"api", method, path, status, durMs})
}

func (m *Inmem) ObserveFetch(bytes int, durMs float64) {
	m.push(struct {
		Kind  string
		Bytes int
		Dur   float64
	}{"fetch", bytes, durMs})
}

func (m *Inmem) ObserveDeliver(strategy string, ok bool, durMs float64) {
	m.push(struct {
		Kind     string
		Strategy string
		OK       bool
		Dur      float64
	}{"deliver", strategy, ok, durMs})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// CacheTotals is read by tests.
func (m *Inmem) CacheTotals() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}

func (m *Inmem) Last() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.last))
	copy(out, m.last)
	return out
}
