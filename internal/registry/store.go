// Package registry holds the Hub's in-memory view of every registered
// instance. It mirrors the two-level sharded map the registry pool used
// in the system this Hub's protocol was modeled on: a bucket per service
// name, each bucket guarding only its own instances so that registration
// traffic for one service never blocks lookups or probes on another.
package registry

import (
	"sync"

	"github.com/cuemby/hub/api/pb"
)

// UpsertResult reports what Upsert did so callers (the RPC surface) can
// decide whether to broadcast a change and whether to spawn a prober.
type UpsertResult struct {
	Instance  *pb.Instance
	Duplicate bool
}

type bucket struct {
	mu        sync.RWMutex
	instances map[string]*pb.Instance
}

// Store is the Registry Store: a concurrent, non-persistent map of
// service name to instance ID to Instance.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

// New returns an empty Store.
func New() *Store {
	return &Store{buckets: make(map[string]*bucket)}
}

func (s *Store) bucketFor(name string, create bool) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[name]
	s.mu.RUnlock()
	if ok || !create {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.buckets[name]; ok {
		return b
	}
	b = &bucket{instances: make(map[string]*pb.Instance)}
	s.buckets[name] = b
	return b
}

// Upsert inserts inst under name, or replaces the existing instance with
// the same ID. If an instance with the same ID already exists, is
// structurally equal to inst (Instance.Equal, which ignores Status), and
// still has a positive health-check retry budget, the upsert is treated
// as a duplicate re-register: the stored instance is left untouched and
// Duplicate is true. Callers use this to decide whether to re-broadcast
// or spawn a new prober loop.
func (s *Store) Upsert(name string, inst *pb.Instance) UpsertResult {
	b := s.bucketFor(name, true)

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.instances[inst.Id]; ok {
		if existing.Equal(inst) && existing.HealthCheck != nil && existing.HealthCheck.Retries > 0 {
			return UpsertResult{Instance: existing.Clone(), Duplicate: true}
		}
	}

	stored := inst.Clone()
	b.instances[stored.Id] = stored
	return UpsertResult{Instance: stored.Clone()}
}

// Remove deletes the instance identified by name/id, returning the
// removed instance (its last known status included) and whether it was
// present.
func (s *Store) Remove(name, id string) (*pb.Instance, bool) {
	b := s.bucketFor(name, false)
	if b == nil {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	inst, ok := b.instances[id]
	if !ok {
		return nil, false
	}
	delete(b.instances, id)
	return inst.Clone(), true
}

// UpdateHealth is called by the prober on every tick to persist both the
// observed status and the live retry budget. Keeping retries in the
// store, not just in the prober goroutine, is what lets Upsert's
// duplicate check see a budget that has actually run out: a register
// racing a prober that retired moments ago must find Retries == 0 in the
// stored instance, not whatever value the original register request
// carried.
func (s *Store) UpdateHealth(name, id string, status pb.Status, retries int32) (*pb.Instance, bool) {
	b := s.bucketFor(name, false)
	if b == nil {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	inst, ok := b.instances[id]
	if !ok {
		return nil, false
	}
	inst.Status = status
	if inst.HealthCheck != nil {
		inst.HealthCheck.Retries = retries
	}
	return inst.Clone(), true
}

// Get returns a copy of a single instance.
func (s *Store) Get(name, id string) (*pb.Instance, bool) {
	b := s.bucketFor(name, false)
	if b == nil {
		return nil, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	inst, ok := b.instances[id]
	if !ok {
		return nil, false
	}
	return inst.Clone(), true
}

// List returns a snapshot of every instance registered under name. An
// unknown service name yields an empty, non-nil slice rather than an
// error - querying a service nobody has registered yet is not a failure.
func (s *Store) List(name string) []*pb.Instance {
	b := s.bucketFor(name, false)
	if b == nil {
		return []*pb.Instance{}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*pb.Instance, 0, len(b.instances))
	for _, inst := range b.instances {
		out = append(out, inst.Clone())
	}
	return out
}

// Names returns every service name currently known to the store,
// including ones whose last instance was since removed (the bucket is
// never pruned, matching the pack's "buckets are cheap, don't bother
// garbage-collecting them" pattern for sharded maps).
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		out = append(out, name)
	}
	return out
}
