package pb

import "google.golang.org/grpc"

// CallOptions are the default options a caller should pass to
// grpc.NewClient/grpc.Dial (via grpc.WithDefaultCallOptions) so that
// invocations route through the hubjson codec registered in codec.go.
func CallOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.CallContentSubtype(codecName)}
}
