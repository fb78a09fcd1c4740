package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/hub/api/pb"
)

const sampleManifest = `
services:
  - name: payments
    instances:
      - id: i1
        address: 10.0.0.1
        port: 8080
        version: "1.0.0"
        scheme: http
        tags: ["primary"]
        health_check:
          endpoint: /healthz
          interval: 5
          timeout: 2
          retries: 3
          scheme: http
  - name: orders
    instances:
      - id: i2
        address: 10.0.0.2
        port: 9090
        scheme: https
`

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesServicesAndInstances(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Services, 2)
	assert.Equal(t, "payments", m.Services[0].Name)
	assert.Equal(t, "i1", m.Services[0].Instances[0].Id)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/manifest.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "not: [valid: yaml")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestManifest_InstancesFlattensAcrossServices(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	instances := m.Instances()
	require.Len(t, instances, 2)

	var byName = map[string]*pb.Instance{}
	for _, inst := range instances {
		byName[inst.Name] = inst
	}

	payments := byName["payments"]
	require.NotNil(t, payments)
	assert.Equal(t, "i1", payments.Id)
	assert.Equal(t, pb.SchemeHTTP, payments.Scheme)
	assert.Equal(t, []string{"primary"}, payments.Tags)
	require.NotNil(t, payments.HealthCheck)
	assert.Equal(t, int32(3), payments.HealthCheck.Retries)

	orders := byName["orders"]
	require.NotNil(t, orders)
	assert.Equal(t, pb.SchemeHTTPS, orders.Scheme)
	assert.Nil(t, orders.HealthCheck)
}
