package metrics

import (
	"time"

	"github.com/cuemby/hub/api/pb"
)

// RegistrySource is the subset of registry.Store the collector samples.
type RegistrySource interface {
	Names() []string
	List(name string) []*pb.Instance
}

// FabricSource is the subset of fabric.Fabric the collector samples.
type FabricSource interface {
	SubscriberCount(name string) int
}

// Collector periodically samples the registry and fabric into the
// InstancesActive and SubscriptionsActive gauges, the way the teacher's
// Collector samples the manager on a ticker rather than updating gauges
// inline on every mutation.
type Collector struct {
	registry RegistrySource
	fabric   FabricSource
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(registry RegistrySource, fabric FabricSource) *Collector {
	return &Collector{
		registry: registry,
		fabric:   fabric,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for _, name := range c.registry.Names() {
		counts := map[string]int{"up": 0, "down": 0, "unknown": 0}
		for _, inst := range c.registry.List(name) {
			counts[inst.Status.String()]++
		}
		for status, count := range counts {
			InstancesActive.WithLabelValues(name, status).Set(float64(count))
		}
		SubscriptionsActive.WithLabelValues(name).Set(float64(c.fabric.SubscriberCount(name)))
	}
}
