package pb

import (
	"context"

	"google.golang.org/grpc"
)

// Health_Check_FullMethodName is the RPC a registrant implements so the
// prober can probe it. Registrants are expected to serve this method;
// the Hub only ever dials it as a client.
const Health_Check_FullMethodName = "/hub.Health/Check"

// HealthClient is the prober's view of a registrant's own Health
// service. Unlike ServiceRegistryClient, the Hub never serves this
// side - it only dials out.
type HealthClient interface {
	Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type healthClient struct {
	cc grpc.ClientConnInterface
}

// NewHealthClient wraps cc with the registrant-side Health.Check contract.
func NewHealthClient(cc grpc.ClientConnInterface) HealthClient {
	return &healthClient{cc}
}

func (c *healthClient) Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, Health_Check_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
