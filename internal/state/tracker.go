// Package state tracks the last observed program number per (session,
// channel). The map is sharded so that updates to unrelated keys never
// contend on the same lock.
package state

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

type stateKey struct {
	session string
	channel uint8
}

type shard struct {
	mu       sync.RWMutex
	programs map[stateKey]uint8
}

// Tracker is the program state store. The zero value is not usable; call
// NewTracker.
type Tracker struct {
	shards [shardCount]*shard
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i] = &shard{programs: make(map[stateKey]uint8)}
	}
	return t
}

func (t *Tracker) shardFor(key stateKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.session))
	_, _ = h.Write([]byte{key.channel})
	return t.shards[h.Sum32()%shardCount]
}

// ObserveProgramChange records the program number for (session, channel).
// The upsert always succeeds and is atomic per key.
func (t *Tracker) ObserveProgramChange(session string, channel, program uint8) {
	key := stateKey{session: session, channel: channel}
	s := t.shardFor(key)
	s.mu.Lock()
	s.programs[key] = program
	s.mu.Unlock()
}

// CurrentProgram returns the last observed program number for (session,
// channel). The second return value is false when no Program Change has been
// observed yet.
func (t *Tracker) CurrentProgram(session string, channel uint8) (uint8, bool) {
	key := stateKey{session: session, channel: channel}
	s := t.shardFor(key)
	s.mu.RLock()
	program, ok := s.programs[key]
	s.mu.RUnlock()
	return program, ok
}
