// Package fabric implements the Broadcast Fabric: a bounded, lossy,
// multi-consumer change-event channel per service name. It plays the
// role the pack's teacher assigns to pkg/events.Broker, generalized from
// one global event bus to one bus per service, and from "best effort,
// drop if nobody's listening" to "best effort, drop the oldest buffered
// event if a listener falls behind" - the semantics the discovery
// protocol this Hub implements models on a bounded broadcast channel.
package fabric

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cuemby/hub/api/pb"
	"github.com/cuemby/hub/pkg/metrics"
)

// lagWarnLimit bounds how often a single lagging subscriber's "dropped
// oldest event" WARN fires, so a subscriber stuck far behind doesn't
// flood the log once per publish - the drop itself still happens on
// every full buffer, only the log line is throttled.
const lagWarnLimit = rate.Limit(1)

// Capacity is the per-subscriber buffer depth. A subscriber that has
// Capacity unread events buffered when another is published loses the
// oldest of them.
const Capacity = 100

type item struct {
	event *pb.ChangeEvent
}

// Receiver is a single subscriber's view of a service's change stream.
// It is not safe for concurrent use by multiple goroutines.
type Receiver struct {
	sub *subscriber
}

// Recv blocks until the next change event, a lag notice, or ctx is
// done. A lag notice surfaces once as an error; the Receiver itself
// keeps working afterward (a caller that chooses to call Recv again
// resumes normal delivery), though the RPC Surface built on top of this
// treats any error from Recv as terminal, since a gRPC error always
// ends a server-streaming RPC.
func (r *Receiver) Recv(ctx context.Context) (*pb.ChangeEvent, error) {
	if dropped := atomic.SwapInt32(&r.sub.dropped, 0); dropped > 0 {
		return nil, fmt.Errorf("Broadcast error: subscriber lagged, dropped %d event(s)", dropped)
	}
	select {
	case it, ok := <-r.sub.ch:
		if !ok {
			return nil, fmt.Errorf("Broadcast error: channel closed")
		}
		return it.event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close unregisters the receiver. After Close, Recv returns any events
// that were already buffered and then an error. Safe to call more than
// once.
func (r *Receiver) Close() {
	r.sub.bucket.remove(r.sub)
}

type subscriber struct {
	ch         chan item
	dropped    int32
	bucket     *bucket
	lagLimiter *rate.Limiter
}

type bucket struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

func newBucket() *bucket {
	return &bucket{subscribers: make(map[*subscriber]struct{})}
}

func (b *bucket) add(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[sub] = struct{}{}
}

func (b *bucket) remove(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub.ch)
}

func (b *bucket) snapshot() []*subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*subscriber, 0, len(b.subscribers))
	for sub := range b.subscribers {
		out = append(out, sub)
	}
	return out
}

func (b *bucket) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Fabric owns one bucket of subscribers per service name.
type Fabric struct {
	log zerolog.Logger

	mu      sync.RWMutex
	buckets map[string]*bucket
}

// New returns an empty Fabric. log is used for the WARN-level
// no-receivers and lag notices the underlying protocol logs rather than
// fails on, since publish never blocks and never returns an error to its
// caller.
func New(log zerolog.Logger) *Fabric {
	return &Fabric{
		log:     log.With().Str("component", "fabric").Logger(),
		buckets: make(map[string]*bucket),
	}
}

func (f *Fabric) bucketFor(name string, create bool) *bucket {
	f.mu.RLock()
	b, ok := f.buckets[name]
	f.mu.RUnlock()
	if ok || !create {
		return b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok = f.buckets[name]; ok {
		return b
	}
	b = newBucket()
	f.buckets[name] = b
	return b
}

// Ensure creates the bucket for name if it doesn't already exist, so
// that a Publish racing a concurrent first Subscribe never misses the
// bucket entirely.
func (f *Fabric) Ensure(name string) {
	f.bucketFor(name, true)
}

// Subscribe returns a Receiver positioned at the current tail of name's
// stream; it never replays events published before the call.
func (f *Fabric) Subscribe(name string) *Receiver {
	b := f.bucketFor(name, true)
	sub := &subscriber{
		ch:         make(chan item, Capacity),
		bucket:     b,
		lagLimiter: rate.NewLimiter(lagWarnLimit, 1),
	}
	b.add(sub)
	return &Receiver{sub: sub}
}

// SubscriberCount reports how many receivers are currently attached to
// name. Used by metrics.
func (f *Fabric) SubscriberCount(name string) int {
	b := f.bucketFor(name, false)
	if b == nil {
		return 0
	}
	return b.count()
}

// Publish delivers event to every current subscriber of name. Delivery
// is best effort: a subscriber whose buffer is full has its oldest
// buffered event dropped to make room, and is told so on its next Recv.
// Publish itself never blocks and never fails.
func (f *Fabric) Publish(name string, event *pb.ChangeEvent) {
	b := f.bucketFor(name, false)
	if b == nil {
		return
	}
	// Deliver under the bucket lock so a concurrent Close cannot close a
	// subscriber's channel between the lookup and the send. deliver never
	// blocks, so the lock is held only briefly.
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subscribers) == 0 {
		f.log.Warn().Str("service_name", name).Msg("broadcast: no receivers")
		return
	}
	for sub := range b.subscribers {
		f.deliver(name, sub, event)
	}
}

func (f *Fabric) deliver(name string, sub *subscriber, event *pb.ChangeEvent) {
	select {
	case sub.ch <- item{event: event}:
		return
	default:
	}

	select {
	case <-sub.ch:
		atomic.AddInt32(&sub.dropped, 1)
		metrics.BroadcastDropsTotal.WithLabelValues(name).Inc()
		if sub.lagLimiter.Allow() {
			f.log.Warn().Str("service_name", name).Msg("broadcast: subscriber lagging, dropped oldest event")
		}
	default:
	}

	select {
	case sub.ch <- item{event: event}:
	default:
		atomic.AddInt32(&sub.dropped, 1)
		metrics.BroadcastDropsTotal.WithLabelValues(name).Inc()
	}
}
