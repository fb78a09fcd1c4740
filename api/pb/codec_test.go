package pb

import (
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodec_RoundTrips(t *testing.T) {
	c := jsonCodec{}

	original := &Instance{Id: "i1", Name: "payments", Port: 8080, Status: StatusUp}
	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Instance
	if err := c.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Id != original.Id || decoded.Name != original.Name || decoded.Port != original.Port {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestJSONCodec_RegisteredUnderHubjson(t *testing.T) {
	if got := (jsonCodec{}).Name(); got != "hubjson" {
		t.Fatalf("expected codec name hubjson, got %s", got)
	}
	if encoding.GetCodec(codecName) == nil {
		t.Fatal("expected hubjson codec to be registered with grpc/encoding")
	}
}

func TestCallOptions_UsesHubjsonSubtype(t *testing.T) {
	opts := CallOptions()
	if len(opts) != 1 {
		t.Fatalf("expected exactly one default call option, got %d", len(opts))
	}
	sub, ok := opts[0].(grpc.ContentSubtypeCallOption)
	if !ok || sub.ContentSubtype != codecName {
		t.Fatalf("expected content subtype %q, got %#v", codecName, opts[0])
	}
}
