// Package prober implements the Health Prober: one background loop per
// probed instance that periodically calls the instance's own Health
// service, tracks a retry budget, and flips the instance's status in the
// Registry Store. The loop shape - spawn, tick, context-cancel-to-stop -
// is the teacher's pkg/worker/health_monitor.go pattern generalized from
// container health checks to remote RPC health checks; the retry-budget
// state machine itself (decrement on repeated failure, reset to the
// spawn-time budget on recovery, retire once exhausted) is ported from
// the discovery protocol's modify_service_status.
package prober

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/hub/api/pb"
	"github.com/cuemby/hub/pkg/metrics"
)

// StatusUpdater is the subset of registry.Store the prober needs. Kept
// as an interface so tests can supply a fake store instead of a whole
// registry.Store.
type StatusUpdater interface {
	UpdateHealth(name, id string, status pb.Status, retries int32) (*pb.Instance, bool)
}

// Publisher is the subset of fabric.Fabric the prober needs.
type Publisher interface {
	Publish(name string, event *pb.ChangeEvent)
}

// Config tunes prober behavior that is not carried on the Instance
// itself.
type Config struct {
	// DockerLoopbackRewrite rewrites a 127.0.0.1 instance address to
	// host.docker.internal before dialing, for Hub deployments that run
	// in their own container while probing host-network instances.
	DockerLoopbackRewrite bool

	// DialFunc constructs the probe client. Overridable in tests; nil
	// means newProbeClient.
	DialFunc func(target string, creds credentials.TransportCredentials) (pb.HealthClient, func() error, error)
}

// Loop runs one instance's probe cycle until its retry budget is
// exhausted, the instance is removed, or its context is canceled.
type Loop struct {
	serviceName string
	instance    *pb.Instance
	maxTries    int32
	retries     int32
	status      pb.Status

	storeUpdater StatusUpdater
	fab          Publisher
	cfg          Config
	log          zerolog.Logger
}

// Spawn starts a probe loop for inst under serviceName and returns a
// CancelFunc the caller (the Hub, on unregister) uses to stop it early.
// maxTries is captured once, from inst.HealthCheck.Retries at spawn
// time, and is never re-read from the store afterward - a later
// re-register creates a fresh loop with its own budget rather than
// mutating this one's.
func Spawn(parent context.Context, serviceName string, inst *pb.Instance, store StatusUpdater, fab Publisher, cfg Config, log zerolog.Logger) context.CancelFunc {
	ctx, cancel := context.WithCancel(parent)
	l := &Loop{
		serviceName:  serviceName,
		instance:     inst.Clone(),
		maxTries:     inst.HealthCheck.Retries,
		retries:      inst.HealthCheck.Retries,
		status:       inst.Status,
		storeUpdater: store,
		fab:          fab,
		cfg:          cfg,
		log: log.With().
			Str("component", "prober").
			Str("service_name", serviceName).
			Str("instance_id", inst.Id).
			Logger(),
	}
	go l.run(ctx)
	return cancel
}

func (l *Loop) run(ctx context.Context) {
	hc := l.instance.HealthCheck
	interval := time.Duration(hc.Interval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	timeout := time.Duration(hc.Timeout) * time.Second
	if timeout <= 0 {
		timeout = interval
	}

	client, closeClient, err := l.dial()
	if err != nil {
		l.log.Error().Err(err).Msg("prober: failed to build probe client, retiring loop")
		return
	}
	defer closeClient()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if !l.tick(ctx, client, timeout) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.tick(ctx, client, timeout) {
				return
			}
		}
	}
}

// tick runs one probe and applies its result. It returns false when the
// loop should retire (retry budget exhausted, or the instance is no
// longer registered).
func (l *Loop) tick(ctx context.Context, client pb.HealthClient, timeout time.Duration) bool {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := metrics.NewTimer()
	resp, err := client.Check(checkCtx, &pb.HealthCheckRequest{Service: l.serviceName})
	timer.ObserveDurationVec(metrics.ProbeDuration, l.serviceName)

	observed := pb.StatusDown
	if err == nil && resp != nil && resp.Status == pb.ServingStatusServing {
		observed = pb.StatusUp
	}
	metrics.ProbeOutcomesTotal.WithLabelValues(l.serviceName, observed.String()).Inc()

	isPass, needNotify := l.modifyStatus(observed)

	// Persisted every tick, not just on a status transition, so a client
	// that re-registers mid-probe sees the retry budget the prober is
	// actually working with rather than whatever value the instance last
	// registered with.
	updated, ok := l.storeUpdater.UpdateHealth(l.serviceName, l.instance.Id, l.status, l.retries)
	if !ok {
		l.log.Debug().Msg("prober: instance no longer registered, retiring loop")
		return false
	}

	if needNotify {
		l.fab.Publish(l.serviceName, &pb.ChangeEvent{
			Id:      updated.Id,
			Name:    updated.Name,
			Address: updated.Address,
			Port:    updated.Port,
			Active:  updated.Status,
			Scheme:  updated.Scheme,
		})
	}

	if !isPass {
		l.log.Warn().Msg("prober: retry budget exhausted, retiring loop")
	}
	return isPass
}

// modifyStatus ports the discovery protocol's modify_service_status:
// retries only decrement on a repeated Down observation, any status
// transition triggers a notify, and a transition to Up resets retries
// to the spawn-time budget.
func (l *Loop) modifyStatus(observed pb.Status) (isPass, needNotify bool) {
	if l.status == pb.StatusDown && observed == pb.StatusDown {
		l.retries--
	}
	if l.status != observed {
		l.status = observed
		if observed == pb.StatusUp {
			l.retries = l.maxTries
		}
		needNotify = true
	}
	return l.retries > 0, needNotify
}

func (l *Loop) dial() (pb.HealthClient, func() error, error) {
	if l.cfg.DialFunc != nil {
		creds := l.transportCreds()
		return l.cfg.DialFunc(l.target(), creds)
	}
	return newProbeClient(l.target(), l.transportCreds())
}

func (l *Loop) target() string {
	addr := l.instance.Address
	if l.cfg.DockerLoopbackRewrite && addr == "127.0.0.1" {
		addr = "host.docker.internal"
	}
	return fmt.Sprintf("%s:%d", addr, l.instance.Port)
}

// transportCreds picks TLS vs. plaintext from the advertised schemes:
// the probe uses TLS when either Instance.Scheme or HealthCheck.Scheme
// is https, and plaintext only when both are http. TLSDomain, when
// present, only overrides the SNI name sent on an already-TLS
// connection - it never turns plaintext on.
func (l *Loop) transportCreds() credentials.TransportCredentials {
	scheme := l.instance.Scheme
	if hc := l.instance.HealthCheck; hc != nil && hc.Scheme == pb.SchemeHTTPS {
		scheme = pb.SchemeHTTPS
	}
	if scheme != pb.SchemeHTTPS {
		return insecure.NewCredentials()
	}

	serverName := l.instance.Address
	if l.instance.HealthCheck != nil && l.instance.HealthCheck.TLSDomain != "" {
		serverName = l.instance.HealthCheck.TLSDomain
	}
	return credentials.NewTLS(&tls.Config{ServerName: serverName})
}

// newProbeClient builds a gRPC client whose connection is established
// lazily on first RPC rather than at construction time, mirroring
// Endpoint::from_shared(addr)?.connect_lazy() in the protocol this
// prober implements.
func newProbeClient(target string, creds credentials.TransportCredentials) (pb.HealthClient, func() error, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(creds), grpc.WithDefaultCallOptions(pb.CallOptions()...))
	if err != nil {
		return nil, nil, err
	}
	return pb.NewHealthClient(conn), conn.Close, nil
}
