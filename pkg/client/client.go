// Package client is a thin SDK for talking to a Hub: each method opens
// a short-lived, timeout-bounded context and forwards to the
// corresponding RPC, unwrapping the response the way the teacher's
// client package wraps WarrenAPI calls for CLI usage.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/hub/api/pb"
)

const defaultTimeout = 10 * time.Second

// Client wraps a connection to a Hub's RPC Surface.
type Client struct {
	conn   *grpc.ClientConn
	client pb.ServiceRegistryClient
}

// New dials addr and returns a ready-to-use Client. The connection is
// established lazily, on the first RPC, the way the Hub's own prober
// client is.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(pb.CallOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{
		conn:   conn,
		client: pb.NewServiceRegistryClient(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// RegisterOption tweaks an Instance before it is sent to Register.
type RegisterOption func(*pb.Instance)

// WithGeneratedID assigns a random v4 UUID as the instance ID when the
// caller doesn't want to manage IDs itself.
func WithGeneratedID() RegisterOption {
	return func(inst *pb.Instance) {
		inst.Id = uuid.NewString()
	}
}

// WithHealthCheck attaches a health check descriptor to the instance.
func WithHealthCheck(hc *pb.HealthCheck) RegisterOption {
	return func(inst *pb.Instance) {
		inst.HealthCheck = hc
	}
}

// WithTags attaches free-form tags to the instance.
func WithTags(tags ...string) RegisterOption {
	return func(inst *pb.Instance) {
		inst.Tags = tags
	}
}

// Register advertises inst, applying any options first. Returns the
// server's OperationStatus - a duplicate re-register is reported as
// Success=true rather than an error.
func (c *Client) Register(name, address string, port uint32, opts ...RegisterOption) (*pb.OperationStatus, error) {
	inst := &pb.Instance{
		Name:    name,
		Address: address,
		Port:    port,
	}
	for _, opt := range opts {
		opt(inst)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return c.client.RegisterService(ctx, inst)
}

// Unregister removes the instance identified by name/id.
func (c *Client) Unregister(name, id string) (*pb.OperationStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return c.client.UnregisterService(ctx, &pb.Identifier{Name: name, Id: id})
}

// Query returns the current instances registered under name.
func (c *Client) Query(name string) ([]*pb.ChangeEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	resp, err := c.client.QueryServices(ctx, &pb.QueryRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// Subscribe opens a long-lived stream of change events for name. ctx
// governs the stream's lifetime: canceling it releases the stream.
func (c *Client) Subscribe(ctx context.Context, name string) (pb.ServiceRegistry_SubscribeToServiceClient, error) {
	return c.client.SubscribeToService(ctx, &pb.SubscribeRequest{Service: name})
}
