package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceRegistry method names, mirroring what protoc-gen-go-grpc would
// emit for a service named ServiceRegistry in package hub.
const (
	serviceRegistryServiceName = "hub.ServiceRegistry"

	ServiceRegistry_RegisterService_FullMethodName    = "/" + serviceRegistryServiceName + "/RegisterService"
	ServiceRegistry_UnregisterService_FullMethodName  = "/" + serviceRegistryServiceName + "/UnregisterService"
	ServiceRegistry_QueryServices_FullMethodName      = "/" + serviceRegistryServiceName + "/QueryServices"
	ServiceRegistry_SubscribeToService_FullMethodName = "/" + serviceRegistryServiceName + "/SubscribeToService"
)

// ServiceRegistryServer is the RPC Surface the Hub implements.
type ServiceRegistryServer interface {
	RegisterService(context.Context, *Instance) (*OperationStatus, error)
	UnregisterService(context.Context, *Identifier) (*OperationStatus, error)
	QueryServices(context.Context, *QueryRequest) (*QueryResponse, error)
	SubscribeToService(*SubscribeRequest, ServiceRegistry_SubscribeToServiceServer) error
}

// UnimplementedServiceRegistryServer can be embedded by implementations
// to satisfy ServiceRegistryServer for methods they don't override.
type UnimplementedServiceRegistryServer struct{}

func (UnimplementedServiceRegistryServer) RegisterService(context.Context, *Instance) (*OperationStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterService not implemented")
}

func (UnimplementedServiceRegistryServer) UnregisterService(context.Context, *Identifier) (*OperationStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method UnregisterService not implemented")
}

func (UnimplementedServiceRegistryServer) QueryServices(context.Context, *QueryRequest) (*QueryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryServices not implemented")
}

func (UnimplementedServiceRegistryServer) SubscribeToService(*SubscribeRequest, ServiceRegistry_SubscribeToServiceServer) error {
	return status.Error(codes.Unimplemented, "method SubscribeToService not implemented")
}

// ServiceRegistry_SubscribeToServiceServer is the server-side stream
// handle for SubscribeToService.
type ServiceRegistry_SubscribeToServiceServer interface {
	Send(*ChangeEvent) error
	grpc.ServerStream
}

type serviceRegistrySubscribeToServiceServer struct {
	grpc.ServerStream
}

func (x *serviceRegistrySubscribeToServiceServer) Send(m *ChangeEvent) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterServiceRegistryServer registers srv with s.
func RegisterServiceRegistryServer(s grpc.ServiceRegistrar, srv ServiceRegistryServer) {
	s.RegisterService(&ServiceRegistry_ServiceDesc, srv)
}

func _ServiceRegistry_RegisterService_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Instance)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServiceRegistryServer).RegisterService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceRegistry_RegisterService_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServiceRegistryServer).RegisterService(ctx, req.(*Instance))
	}
	return interceptor(ctx, in, info, handler)
}

func _ServiceRegistry_UnregisterService_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Identifier)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServiceRegistryServer).UnregisterService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceRegistry_UnregisterService_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServiceRegistryServer).UnregisterService(ctx, req.(*Identifier))
	}
	return interceptor(ctx, in, info, handler)
}

func _ServiceRegistry_QueryServices_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServiceRegistryServer).QueryServices(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceRegistry_QueryServices_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServiceRegistryServer).QueryServices(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ServiceRegistry_SubscribeToService_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ServiceRegistryServer).SubscribeToService(m, &serviceRegistrySubscribeToServiceServer{stream})
}

// ServiceRegistry_ServiceDesc is the grpc.ServiceDesc a hand-generated
// stub would emit for the ServiceRegistry service.
var ServiceRegistry_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceRegistryServiceName,
	HandlerType: (*ServiceRegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterService", Handler: _ServiceRegistry_RegisterService_Handler},
		{MethodName: "UnregisterService", Handler: _ServiceRegistry_UnregisterService_Handler},
		{MethodName: "QueryServices", Handler: _ServiceRegistry_QueryServices_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeToService",
			Handler:       _ServiceRegistry_SubscribeToService_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "hub/registry.proto",
}

// ServiceRegistryClient is the client side of the RPC Surface.
type ServiceRegistryClient interface {
	RegisterService(ctx context.Context, in *Instance, opts ...grpc.CallOption) (*OperationStatus, error)
	UnregisterService(ctx context.Context, in *Identifier, opts ...grpc.CallOption) (*OperationStatus, error)
	QueryServices(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
	SubscribeToService(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ServiceRegistry_SubscribeToServiceClient, error)
}

type serviceRegistryClient struct {
	cc grpc.ClientConnInterface
}

// NewServiceRegistryClient wraps cc with the ServiceRegistry contract.
func NewServiceRegistryClient(cc grpc.ClientConnInterface) ServiceRegistryClient {
	return &serviceRegistryClient{cc}
}

func (c *serviceRegistryClient) RegisterService(ctx context.Context, in *Instance, opts ...grpc.CallOption) (*OperationStatus, error) {
	out := new(OperationStatus)
	err := c.cc.Invoke(ctx, ServiceRegistry_RegisterService_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceRegistryClient) UnregisterService(ctx context.Context, in *Identifier, opts ...grpc.CallOption) (*OperationStatus, error) {
	out := new(OperationStatus)
	err := c.cc.Invoke(ctx, ServiceRegistry_UnregisterService_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceRegistryClient) QueryServices(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	err := c.cc.Invoke(ctx, ServiceRegistry_QueryServices_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceRegistryClient) SubscribeToService(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ServiceRegistry_SubscribeToServiceClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceRegistry_ServiceDesc.Streams[0], ServiceRegistry_SubscribeToService_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &serviceRegistrySubscribeToServiceClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ServiceRegistry_SubscribeToServiceClient is the client-side stream
// handle for SubscribeToService.
type ServiceRegistry_SubscribeToServiceClient interface {
	Recv() (*ChangeEvent, error)
	grpc.ClientStream
}

type serviceRegistrySubscribeToServiceClient struct {
	grpc.ClientStream
}

func (x *serviceRegistrySubscribeToServiceClient) Recv() (*ChangeEvent, error) {
	m := new(ChangeEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
