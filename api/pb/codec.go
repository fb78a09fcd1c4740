package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content-subtype this package registers under
// ("application/grpc+hubjson" on the wire). The transport framing and
// stub generation that would normally produce this file are assumed
// external per the service contract (see DESIGN.md "RPC wire format");
// what matters here is that RegisterService/UnregisterService/
// QueryServices/SubscribeToService behave like real unary and
// server-streaming gRPC calls, which this codec gives us without a
// protoc toolchain in the loop.
const codecName = "hubjson"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
