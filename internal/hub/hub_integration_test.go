package hub

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/hub/api/pb"
	"github.com/cuemby/hub/internal/fabric"
	"github.com/cuemby/hub/internal/registry"
	"github.com/cuemby/hub/pkg/log"
)

// HubSuite exercises the Hub end to end over a real loopback gRPC
// connection, the way the pack's integration tests dial a running
// server rather than calling handler methods directly.
type HubSuite struct {
	suite.Suite

	lis    net.Listener
	server *grpc.Server
	conn   *grpc.ClientConn
	client pb.ServiceRegistryClient
}

func (s *HubSuite) SetupTest() {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(s.T(), err)
	s.lis = lis

	h := New(registry.New(), fabric.New(log.Logger), Config{}, log.Logger)
	s.server = grpc.NewServer()
	pb.RegisterServiceRegistryServer(s.server, h)
	go s.server.Serve(lis)

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(pb.CallOptions()...),
	)
	require.NoError(s.T(), err)
	s.conn = conn
	s.client = pb.NewServiceRegistryClient(conn)
}

func (s *HubSuite) TearDownTest() {
	s.conn.Close()
	s.server.Stop()
	s.lis.Close()
}

func (s *HubSuite) TestRegisterThenQuery() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.client.RegisterService(ctx, &pb.Instance{
		Id: "i1", Name: "payments", Address: "10.0.0.1", Port: 8080,
	})
	require.NoError(s.T(), err)

	resp, err := s.client.QueryServices(ctx, &pb.QueryRequest{Name: "payments"})
	require.NoError(s.T(), err)
	require.Len(s.T(), resp.Services, 1)
	s.Equal("i1", resp.Services[0].Id)
}

func (s *HubSuite) TestSubscribeSeesSubsequentRegister() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := s.client.SubscribeToService(ctx, &pb.SubscribeRequest{Service: "payments"})
	require.NoError(s.T(), err)

	// Give the server time to install the subscription before publishing,
	// since Subscribe never replays events from before the call.
	time.Sleep(50 * time.Millisecond)

	_, err = s.client.RegisterService(ctx, &pb.Instance{
		Id: "i1", Name: "payments", Address: "10.0.0.1", Port: 8080,
	})
	require.NoError(s.T(), err)

	event, err := stream.Recv()
	require.NoError(s.T(), err)
	s.Equal("i1", event.Id)
}

func (s *HubSuite) TestSubscribeBeforeRegisterOnUnknownService() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stream, err := s.client.SubscribeToService(ctx, &pb.SubscribeRequest{Service: "brand-new"})
	require.NoError(s.T(), err)

	_, err = stream.Recv()
	s.Error(err) // context deadline, surfaced as the stream ending
}

func (s *HubSuite) TestUnregisterUnknownInstanceSucceedsWithNotFoundMessage() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.client.UnregisterService(ctx, &pb.Identifier{Name: "payments", Id: "ghost"})
	require.NoError(s.T(), err)
	s.True(result.Success)
	s.Equal("service not found", result.Message)
}

func (s *HubSuite) TestIdempotentReRegisterReportsAlreadyRegistered() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inst := &pb.Instance{
		Id: "i1", Name: "payments", Address: "10.0.0.1", Port: 8080,
		HealthCheck: &pb.HealthCheck{Interval: 5, Retries: 3},
	}

	first, err := s.client.RegisterService(ctx, inst)
	require.NoError(s.T(), err)
	s.Equal("registered", first.Message)

	second, err := s.client.RegisterService(ctx, inst)
	require.NoError(s.T(), err)
	s.Equal("service already registered", second.Message)
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}
