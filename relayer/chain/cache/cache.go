// Package cache implements the light-client consensus state cache a chain
// runtime keeps per counterparty client (spec.md §4.E: "a light-client
// cache: maps (client_id, height) -> ConsensusState").
package cache

import (
	"sync"

	"github.com/tokenize-x/ibc-relayer/ibc/client"
	"github.com/tokenize-x/ibc-relayer/ibc/height"
	"github.com/tokenize-x/ibc-relayer/pkg/deterministicmap"
)

// Cache holds cached consensus states keyed by client id, scoped one sorted
// map per revision: lookups never cross a revision boundary, even though
// ibc/height itself orders heights across revisions.
type Cache struct {
	mu   sync.RWMutex
	data map[string]map[uint64]*deterministicmap.Map[uint64, client.AnyConsensusState]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{data: make(map[string]map[uint64]*deterministicmap.Map[uint64, client.AnyConsensusState])}
}

func (c *Cache) revisionMap(clientID string, revision uint64) *deterministicmap.Map[uint64, client.AnyConsensusState] {
	byRevision, ok := c.data[clientID]
	if !ok {
		byRevision = make(map[uint64]*deterministicmap.Map[uint64, client.AnyConsensusState])
		c.data[clientID] = byRevision
	}
	m, ok := byRevision[revision]
	if !ok {
		m = deterministicmap.New[uint64, client.AnyConsensusState]()
		byRevision[revision] = m
	}
	return m
}

// Put records a queried consensus state at the height it was proven at.
func (c *Cache) Put(clientID string, h height.Height, cs client.AnyConsensusState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.revisionMap(clientID, h.RevisionNumber).Set(h.RevisionHeight, cs)
}

// Get returns the exact cached consensus state for h, if any.
func (c *Cache) Get(clientID string, h height.Height) (client.AnyConsensusState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byRevision, ok := c.data[clientID]
	if !ok {
		return client.AnyConsensusState{}, false
	}
	m, ok := byRevision[h.RevisionNumber]
	if !ok {
		return client.AnyConsensusState{}, false
	}
	return m.Get(h.RevisionHeight)
}

// FloorBefore returns the highest cached consensus state at or below h
// within h's revision, letting a caller reuse an already-trusted height
// instead of paying for a fresh client update (spec.md §4.E, §4.F step 3a).
func (c *Cache) FloorBefore(clientID string, h height.Height) (height.Height, client.AnyConsensusState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byRevision, ok := c.data[clientID]
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	m, ok := byRevision[h.RevisionNumber]
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	rh, cs, ok := m.FloorBefore(h.RevisionHeight)
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	return height.New(h.RevisionNumber, rh), cs, true
}

// Latest returns the highest cached height for the given client within the
// given revision, the lookup the link worker uses to decide whether a
// client update is required before assembling a message (spec.md §4.F
// step 3a).
func (c *Cache) Latest(clientID string, revision uint64) (height.Height, client.AnyConsensusState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byRevision, ok := c.data[clientID]
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	m, ok := byRevision[revision]
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	rh, cs, ok := m.Last()
	if !ok {
		return height.Height{}, client.AnyConsensusState{}, false
	}
	return height.New(revision, rh), cs, true
}
