package intake

import (
	"maps"
	"sync"
)

// Pool holds one Engine per session. All engines share the catalog and the
// keyword index; calls for the same session are serialised.
type Pool struct {
	catalog Catalog
	index   Index

	mu       sync.Mutex
	sessions map[string]*slot
}

type slot struct {
	mu     sync.Mutex
	engine *Engine
}

func NewPool(c Catalog) *Pool {
	return &Pool{
		catalog:  c,
		index:    BuildIndex(c),
		sessions: make(map[string]*slot),
	}
}

func (p *Pool) slot(sessionID string) *slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		s = &slot{engine: newEngine(p.catalog, p.index)}
		p.sessions[sessionID] = s
	}
	return s
}

// With runs fn against the session's engine, creating it on first use.
func (p *Pool) With(sessionID string, fn func(*Engine)) {
	_ = p.Do(sessionID, func(e *Engine) error {
		fn(e)
		return nil
	})
}

// Do runs fn while holding the session, so callers can wrap their own
// read-modify-write around the engine. If fn returns an error, topics it
// covered are uncovered again and the error is returned.
func (p *Pool) Do(sessionID string, fn func(*Engine) error) error {
	s := p.slot(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	covered := maps.Clone(s.engine.covered)
	if err := fn(s.engine); err != nil {
		s.engine.covered = covered
		return err
	}
	return nil
}

func (p *Pool) Reset(sessionID string) {
	p.With(sessionID, (*Engine).ResetSession)
}

// Drop releases the session's engine. A later call to With starts fresh.
func (p *Pool) Drop(sessionID string) {
	p.mu.Lock()
	delete(p.sessions, sessionID)
	p.mu.Unlock()
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func (p *Pool) Catalog() Catalog { return p.catalog }
