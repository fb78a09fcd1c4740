package pb

// Scheme selects the URI scheme used to reach an instance, both for
// client routing and for composing the health-probe URL.
type Scheme int32

const (
	SchemeHTTP  Scheme = 0
	SchemeHTTPS Scheme = 1
)

func (s Scheme) String() string {
	if s == SchemeHTTPS {
		return "https"
	}
	return "http"
}

// Status is the Hub-maintained liveness of an Instance. Registrants
// normally leave it Unknown; the Store keeps whatever value a register
// carries, and from then on the prober owns it.
type Status int32

const (
	StatusUnknown Status = 0
	StatusUp      Status = 1
	StatusDown    Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// HealthCheck describes how the Hub should probe an Instance.
type HealthCheck struct {
	Endpoint  string `json:"endpoint"`
	Interval  int32  `json:"interval"`
	Timeout   int32  `json:"timeout"`
	Retries   int32  `json:"retries"`
	Scheme    Scheme `json:"scheme"`
	TLSDomain string `json:"tls_domain,omitempty"`
}

// Clone returns a deep copy, used when the prober needs its own
// snapshot of the configured retry budget independent of later
// mutation of the stored Instance.
func (h *HealthCheck) Clone() *HealthCheck {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

// Instance is an advertised service endpoint.
type Instance struct {
	Id          string            `json:"id"`
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	Port        uint32            `json:"port"`
	Version     string            `json:"version,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	HealthCheck *HealthCheck      `json:"health_check,omitempty"`
	Status      Status            `json:"status"`
	Scheme      Scheme            `json:"scheme"`
}

// Clone returns a deep copy of the instance, including its health-check
// block. The registry store never hands out a pointer it still owns.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	c := *i
	if i.Metadata != nil {
		c.Metadata = make(map[string]string, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	if i.Tags != nil {
		c.Tags = append([]string(nil), i.Tags...)
	}
	c.HealthCheck = i.HealthCheck.Clone()
	return &c
}

// Equal reports structural equality excluding Status, which the Store
// owns rather than the registrant - a re-register that only differs in
// the Hub-assigned status is still "the same instance" for the
// idempotent re-register check in registry.Store.Upsert.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.Id != other.Id || i.Name != other.Name || i.Address != other.Address ||
		i.Port != other.Port || i.Version != other.Version || i.Scheme != other.Scheme {
		return false
	}
	if !equalStringMaps(i.Metadata, other.Metadata) {
		return false
	}
	if !equalStringSlices(i.Tags, other.Tags) {
		return false
	}
	return equalHealthChecks(i.HealthCheck, other.HealthCheck)
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx, v := range a {
		if b[idx] != v {
			return false
		}
	}
	return true
}

func equalHealthChecks(a, b *HealthCheck) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Identifier names a single instance within a service.
type Identifier struct {
	Name string `json:"name"`
	Id   string `json:"id"`
}

// QueryRequest asks for the instances registered under Name.
type QueryRequest struct {
	Name string `json:"name"`
}

// ChangeEvent is published on a service's broadcast channel and
// returned, one per instance, from QueryServices.
type ChangeEvent struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    uint32 `json:"port"`
	Active  Status `json:"active"`
	Scheme  Scheme `json:"scheme"`
}

// QueryResponse is the snapshot returned by QueryServices.
type QueryResponse struct {
	Services []*ChangeEvent `json:"services"`
}

// SubscribeRequest opens a change-event stream for Service.
type SubscribeRequest struct {
	Service string `json:"service"`
}

// OperationStatus is the uniform result of Register/Unregister.
type OperationStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthCheckRequest is sent by the Hub to a registrant's own
// Health.Check RPC during probing.
type HealthCheckRequest struct {
	Service string `json:"service"`
}

// ServingStatus mirrors the conventional grpc.health.v1 enum so a
// registrant can reuse an off-the-shelf health server implementation.
type ServingStatus int32

const (
	ServingStatusUnknown    ServingStatus = 0
	ServingStatusServing    ServingStatus = 1
	ServingStatusNotServing ServingStatus = 2
)

// HealthCheckResponse is the probed instance's answer.
type HealthCheckResponse struct {
	Status ServingStatus `json:"status"`
}
