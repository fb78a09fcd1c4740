// Package hub wires the Registry Store, Broadcast Fabric, and Health
// Prober together behind the RPC Surface. Hub plays the role the
// teacher's pkg/api.Server plays for WarrenAPI: a thin struct embedding
// the generated Unimplemented type, holding references to the domain
// state, with one method per RPC that does validation, calls into the
// domain, and maps domain outcomes onto wire responses - never onto
// transport-level errors for ordinary business conditions.
package hub

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cuemby/hub/api/pb"
	"github.com/cuemby/hub/internal/fabric"
	"github.com/cuemby/hub/internal/prober"
	"github.com/cuemby/hub/internal/registry"
	"github.com/cuemby/hub/pkg/metrics"
)

// Hub implements pb.ServiceRegistryServer over a Registry Store and
// Broadcast Fabric, spawning a Health Prober loop for any instance that
// registers with a health check.
type Hub struct {
	pb.UnimplementedServiceRegistryServer

	store  *registry.Store
	fabric *fabric.Fabric
	cfg    Config
	log    zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // "service/id" -> prober cancel
}

// Config tunes behavior not carried on individual RPC requests.
type Config struct {
	Prober prober.Config
}

// New returns a Hub ready to serve RPCs.
func New(store *registry.Store, fab *fabric.Fabric, cfg Config, log zerolog.Logger) *Hub {
	return &Hub{
		store:   store,
		fabric:  fab,
		cfg:     cfg,
		log:     log.With().Str("component", "hub").Logger(),
		cancels: make(map[string]context.CancelFunc),
	}
}

func probeKey(name, id string) string {
	return name + "/" + id
}

// RegisterService implements the Register operation.
func (h *Hub) RegisterService(ctx context.Context, inst *pb.Instance) (*pb.OperationStatus, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RPCRequestDuration, "RegisterService")

	if inst.Name == "" || inst.Id == "" || inst.Address == "" {
		metrics.RPCRequestsTotal.WithLabelValues("RegisterService", "invalid_argument").Inc()
		return nil, status.Error(codes.InvalidArgument, "name, id, and address are required")
	}
	if inst.HealthCheck != nil && inst.HealthCheck.Interval <= 0 {
		metrics.RPCRequestsTotal.WithLabelValues("RegisterService", "invalid_argument").Inc()
		return nil, status.Error(codes.InvalidArgument, "health_check.interval must be positive")
	}

	result := h.store.Upsert(inst.Name, inst)
	if result.Duplicate {
		h.log.Debug().Str("service_name", inst.Name).Str("instance_id", inst.Id).Msg("register: duplicate, no-op")
		metrics.RPCRequestsTotal.WithLabelValues("RegisterService", "duplicate").Inc()
		return &pb.OperationStatus{Success: true, Message: "service already registered"}, nil
	}

	h.fabric.Ensure(inst.Name)
	metrics.InstancesRegistered.WithLabelValues(inst.Name).Inc()

	if result.Instance.HealthCheck != nil {
		h.spawnProber(inst.Name, result.Instance)
	}

	h.fabric.Publish(inst.Name, registerChangeEvent(result.Instance))
	metrics.BroadcastPublishesTotal.WithLabelValues(inst.Name).Inc()
	metrics.RPCRequestsTotal.WithLabelValues("RegisterService", "ok").Inc()

	return &pb.OperationStatus{Success: true, Message: "registered"}, nil
}

// UnregisterService implements the Unregister operation.
func (h *Hub) UnregisterService(ctx context.Context, id *pb.Identifier) (*pb.OperationStatus, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RPCRequestDuration, "UnregisterService")

	if id.Name == "" || id.Id == "" {
		metrics.RPCRequestsTotal.WithLabelValues("UnregisterService", "invalid_argument").Inc()
		return nil, status.Error(codes.InvalidArgument, "name and id are required")
	}

	h.cancelProber(id.Name, id.Id)

	removed, ok := h.store.Remove(id.Name, id.Id)
	if !ok {
		metrics.RPCRequestsTotal.WithLabelValues("UnregisterService", "not_found").Inc()
		return &pb.OperationStatus{Success: true, Message: "service not found"}, nil
	}

	metrics.InstancesUnregistered.WithLabelValues(id.Name).Inc()
	h.fabric.Publish(id.Name, changeEventFromInstance(removed))
	metrics.BroadcastPublishesTotal.WithLabelValues(id.Name).Inc()
	metrics.RPCRequestsTotal.WithLabelValues("UnregisterService", "ok").Inc()

	return &pb.OperationStatus{Success: true, Message: "unregistered"}, nil
}

// QueryServices implements the Query operation. An unknown service name
// yields an empty list, not an error.
func (h *Hub) QueryServices(ctx context.Context, req *pb.QueryRequest) (*pb.QueryResponse, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RPCRequestDuration, "QueryServices")

	if req.Name == "" {
		metrics.RPCRequestsTotal.WithLabelValues("QueryServices", "invalid_argument").Inc()
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	instances := h.store.List(req.Name)
	events := make([]*pb.ChangeEvent, 0, len(instances))
	for _, inst := range instances {
		events = append(events, changeEventFromInstance(inst))
	}

	metrics.RPCRequestsTotal.WithLabelValues("QueryServices", "ok").Inc()
	return &pb.QueryResponse{Services: events}, nil
}

// SubscribeToService implements the Subscribe operation: a
// server-streaming RPC that forwards the Broadcast Fabric's change
// events for req.Service until the client disconnects.
func (h *Hub) SubscribeToService(req *pb.SubscribeRequest, stream pb.ServiceRegistry_SubscribeToServiceServer) error {
	if req.Service == "" {
		return status.Error(codes.InvalidArgument, "service is required")
	}

	recv := h.fabric.Subscribe(req.Service)
	defer recv.Close()

	log := h.log.With().Str("service_name", req.Service).Logger()
	log.Debug().Msg("subscribe: stream opened")
	defer log.Debug().Msg("subscribe: stream closed")

	ctx := stream.Context()
	for {
		event, err := recv.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A gRPC error always terminates a server-streaming RPC, so
			// a lag notice ends this subscriber's stream; the client is
			// expected to resubscribe, landing at the current tail.
			log.Warn().Err(err).Msg("subscribe: broadcast error")
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.Send(event); err != nil {
			return err
		}
	}
}

func (h *Hub) spawnProber(serviceName string, inst *pb.Instance) {
	cancel := prober.Spawn(context.Background(), serviceName, inst, h.store, h.fabric, h.cfg.Prober, h.log)

	key := probeKey(serviceName, inst.Id)
	h.mu.Lock()
	if old, ok := h.cancels[key]; ok {
		old()
	}
	h.cancels[key] = cancel
	h.mu.Unlock()
	metrics.ProberLoopsActive.Inc()
}

func (h *Hub) cancelProber(serviceName, id string) {
	key := probeKey(serviceName, id)
	h.mu.Lock()
	cancel, ok := h.cancels[key]
	if ok {
		delete(h.cancels, key)
	}
	h.mu.Unlock()
	if ok {
		cancel()
		metrics.ProberLoopsActive.Dec()
	}
}

func changeEventFromInstance(inst *pb.Instance) *pb.ChangeEvent {
	return &pb.ChangeEvent{
		Id:      inst.Id,
		Name:    inst.Name,
		Address: inst.Address,
		Port:    inst.Port,
		Active:  inst.Status,
		Scheme:  inst.Scheme,
	}
}

// registerChangeEvent builds the event broadcast on a fresh register. An
// instance with no health check never gets probed, so its stored status
// stays Unknown forever and QueryServices reports it that way; the
// register notification itself is announced as Up, since subscribers care
// whether the instance just became available, not whether anything is
// watching its liveness.
func registerChangeEvent(inst *pb.Instance) *pb.ChangeEvent {
	event := changeEventFromInstance(inst)
	if event.Active == pb.StatusUnknown {
		event.Active = pb.StatusUp
	}
	return event
}
