package pb

import "testing"

func sampleForEquality() *Instance {
	return &Instance{
		Id:      "i1",
		Name:    "payments",
		Address: "10.0.0.1",
		Port:    8080,
		Version: "1.0.0",
		Tags:    []string{"a", "b"},
		Metadata: map[string]string{
			"region": "us-east",
		},
		HealthCheck: &HealthCheck{Endpoint: "/healthz", Interval: 5, Timeout: 2, Retries: 3},
		Status:      StatusUp,
	}
}

func TestInstanceClone_IsIndependentOfOriginal(t *testing.T) {
	orig := sampleForEquality()
	clone := orig.Clone()

	clone.Tags[0] = "mutated"
	clone.Metadata["region"] = "mutated"
	clone.HealthCheck.Retries = 0

	if orig.Tags[0] == "mutated" {
		t.Fatal("mutating clone's tags mutated the original")
	}
	if orig.Metadata["region"] == "mutated" {
		t.Fatal("mutating clone's metadata mutated the original")
	}
	if orig.HealthCheck.Retries == 0 {
		t.Fatal("mutating clone's health check mutated the original")
	}
}

func TestInstanceClone_Nil(t *testing.T) {
	var i *Instance
	if i.Clone() != nil {
		t.Fatal("cloning a nil instance should return nil")
	}
}

func TestInstanceEqual_IgnoresStatus(t *testing.T) {
	a := sampleForEquality()
	b := sampleForEquality()
	b.Status = StatusDown

	if !a.Equal(b) {
		t.Fatal("instances differing only by status should be equal")
	}
}

func TestInstanceEqual_DetectsFieldDifferences(t *testing.T) {
	a := sampleForEquality()

	cases := []func(*Instance){
		func(i *Instance) { i.Address = "10.0.0.2" },
		func(i *Instance) { i.Port = 9090 },
		func(i *Instance) { i.Tags = []string{"a"} },
		func(i *Instance) { i.Metadata["region"] = "us-west" },
		func(i *Instance) { i.HealthCheck.Retries = 1 },
	}

	for _, mutate := range cases {
		b := sampleForEquality()
		mutate(b)
		if a.Equal(b) {
			t.Fatalf("expected instances to differ after mutation")
		}
	}
}

func TestInstanceEqual_NilHandling(t *testing.T) {
	var a, b *Instance
	if !a.Equal(b) {
		t.Fatal("two nil instances should be equal")
	}

	a = sampleForEquality()
	if a.Equal(nil) {
		t.Fatal("a non-nil instance should not equal nil")
	}
}

func TestScheme_String(t *testing.T) {
	if SchemeHTTP.String() != "http" {
		t.Fatalf("expected http, got %s", SchemeHTTP.String())
	}
	if SchemeHTTPS.String() != "https" {
		t.Fatalf("expected https, got %s", SchemeHTTPS.String())
	}
}

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusUnknown: "unknown",
		StatusUp:      "up",
		StatusDown:    "down",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("status %d: expected %q, got %q", status, want, got)
		}
	}
}
