// Package bootstrap loads a static YAML manifest of instances to
// pre-seed into a Hub at startup - an operational convenience for
// environments that want known-good defaults registered before any
// client connects, mirroring the teacher's general comfort with
// yaml.v3-shaped configuration data (cluster join manifests, compose-
// style service definitions) even though the Hub itself never persists
// state across restarts.
package bootstrap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/hub/api/pb"
)

// Manifest is the top-level shape of a bootstrap YAML file.
type Manifest struct {
	Services []ManifestService `yaml:"services"`
}

// ManifestService groups one or more instances under a service name.
type ManifestService struct {
	Name      string             `yaml:"name"`
	Instances []ManifestInstance `yaml:"instances"`
}

// ManifestInstance is one instance entry in the manifest. Id is
// required: no id is generated for an entry that omits it, and
// Hub.RegisterService rejects such an instance with InvalidArgument,
// which makes cmd/hubd's seeding fail.
type ManifestInstance struct {
	Id          string            `yaml:"id"`
	Address     string            `yaml:"address"`
	Port        uint32            `yaml:"port"`
	Version     string            `yaml:"version"`
	Scheme      string            `yaml:"scheme"`
	Tags        []string          `yaml:"tags"`
	Metadata    map[string]string `yaml:"metadata"`
	HealthCheck *ManifestHealth   `yaml:"health_check"`
}

// ManifestHealth mirrors pb.HealthCheck in YAML-friendly field names.
type ManifestHealth struct {
	Endpoint  string `yaml:"endpoint"`
	Interval  int32  `yaml:"interval"`
	Timeout   int32  `yaml:"timeout"`
	Retries   int32  `yaml:"retries"`
	Scheme    string `yaml:"scheme"`
	TLSDomain string `yaml:"tls_domain"`
}

// Load reads and parses path into a Manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("bootstrap: parse %s: %w", path, err)
	}
	return &m, nil
}

// Instances flattens the manifest into wire Instance messages, ready to
// hand to Hub.RegisterService.
func (m *Manifest) Instances() []*pb.Instance {
	var out []*pb.Instance
	for _, svc := range m.Services {
		for _, mi := range svc.Instances {
			out = append(out, mi.toInstance(svc.Name))
		}
	}
	return out
}

func (mi ManifestInstance) toInstance(serviceName string) *pb.Instance {
	inst := &pb.Instance{
		Id:       mi.Id,
		Name:     serviceName,
		Address:  mi.Address,
		Port:     mi.Port,
		Version:  mi.Version,
		Tags:     mi.Tags,
		Metadata: mi.Metadata,
		Scheme:   parseScheme(mi.Scheme),
	}
	if mi.HealthCheck != nil {
		inst.HealthCheck = &pb.HealthCheck{
			Endpoint:  mi.HealthCheck.Endpoint,
			Interval:  mi.HealthCheck.Interval,
			Timeout:   mi.HealthCheck.Timeout,
			Retries:   mi.HealthCheck.Retries,
			Scheme:    parseScheme(mi.HealthCheck.Scheme),
			TLSDomain: mi.HealthCheck.TLSDomain,
		}
	}
	return inst
}

func parseScheme(s string) pb.Scheme {
	if s == "https" {
		return pb.SchemeHTTPS
	}
	return pb.SchemeHTTP
}
