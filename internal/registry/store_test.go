package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/hub/api/pb"
)

func sampleInstance(id string) *pb.Instance {
	return &pb.Instance{
		Id:      id,
		Name:    "payments",
		Address: "10.0.0.1",
		Port:    8080,
		Version: "1.0.0",
		HealthCheck: &pb.HealthCheck{
			Endpoint: "/healthz",
			Interval: 5,
			Timeout:  2,
			Retries:  3,
		},
	}
}

func TestUpsert_FreshInstanceRetainsUnknownStatus(t *testing.T) {
	s := New()
	result := s.Upsert("payments", sampleInstance("i1"))

	assert.False(t, result.Duplicate)
	assert.Equal(t, pb.StatusUnknown, result.Instance.Status)
}

func TestUpsert_DuplicateReRegisterIsIdempotent(t *testing.T) {
	s := New()
	inst := sampleInstance("i1")
	first := s.Upsert("payments", inst)
	require.False(t, first.Duplicate)

	second := s.Upsert("payments", sampleInstance("i1"))
	assert.True(t, second.Duplicate)
}

func TestUpsert_NotDuplicateWhenRetriesExhausted(t *testing.T) {
	s := New()
	inst := sampleInstance("i1")
	s.Upsert("payments", inst)

	// Simulate the prober having exhausted the retry budget, the same way
	// Loop.tick persists it on every observation.
	_, ok := s.UpdateHealth("payments", "i1", pb.StatusDown, 0)
	require.True(t, ok)

	result := s.Upsert("payments", sampleInstance("i1"))
	assert.False(t, result.Duplicate)
}

func TestUpsert_DifferentInstanceIsNotDuplicate(t *testing.T) {
	s := New()
	s.Upsert("payments", sampleInstance("i1"))

	changed := sampleInstance("i1")
	changed.Port = 9090
	result := s.Upsert("payments", changed)

	assert.False(t, result.Duplicate)
	assert.Equal(t, uint32(9090), result.Instance.Port)
}

func TestRemove(t *testing.T) {
	s := New()
	s.Upsert("payments", sampleInstance("i1"))

	removed, ok := s.Remove("payments", "i1")
	require.True(t, ok)
	assert.Equal(t, "i1", removed.Id)

	_, ok = s.Remove("payments", "i1")
	assert.False(t, ok)
}

func TestRemove_UnknownService(t *testing.T) {
	s := New()
	_, ok := s.Remove("nobody-home", "i1")
	assert.False(t, ok)
}

func TestUpdateHealth(t *testing.T) {
	s := New()
	s.Upsert("payments", sampleInstance("i1"))

	updated, ok := s.UpdateHealth("payments", "i1", pb.StatusDown, 1)
	require.True(t, ok)
	assert.Equal(t, pb.StatusDown, updated.Status)
	assert.Equal(t, int32(1), updated.HealthCheck.Retries)

	fetched, ok := s.Get("payments", "i1")
	require.True(t, ok)
	assert.Equal(t, pb.StatusDown, fetched.Status)
	assert.Equal(t, int32(1), fetched.HealthCheck.Retries)
}

func TestUpdateHealth_MissingInstance(t *testing.T) {
	s := New()
	_, ok := s.UpdateHealth("payments", "ghost", pb.StatusDown, 0)
	assert.False(t, ok)
}

func TestList_UnknownServiceReturnsEmptyNotNil(t *testing.T) {
	s := New()
	out := s.List("nothing-registered")
	assert.NotNil(t, out)
	assert.Len(t, out, 0)
}

func TestList_ReturnsClones(t *testing.T) {
	s := New()
	s.Upsert("payments", sampleInstance("i1"))

	list := s.List("payments")
	require.Len(t, list, 1)
	list[0].Port = 1

	fetched, _ := s.Get("payments", "i1")
	assert.NotEqual(t, uint32(1), fetched.Port)
}

func TestNames_IncludesEmptiedBuckets(t *testing.T) {
	s := New()
	s.Upsert("payments", sampleInstance("i1"))
	s.Remove("payments", "i1")

	assert.Contains(t, s.Names(), "payments")
}

func TestStore_ConcurrentAccessAcrossServices(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	services := []string{"payments", "orders", "inventory"}
	for _, svc := range services {
		svc := svc
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				s.Upsert(svc, sampleInstance(string(rune('a'+id))))
			}(i)
		}
	}
	wg.Wait()

	for _, svc := range services {
		assert.Len(t, s.List(svc), 50)
	}
}
