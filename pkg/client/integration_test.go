package client

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestClientIntegration_ReadRegistry(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := NewClientFromEnv(ctx)
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	defer client.Close()

	registry, err := client.RegistryContract()
	if err != nil {
		t.Fatalf("failed to bind registry: %v", err)
	}
	version, err := registry.Version(ctx)
	if err != nil {
		t.Fatalf("failed to read registry version: %v", err)
	}
	if version.Sign() <= 0 {
		t.Fatalf("unexpected registry version %s", version)
	}
	if !client.Registry().Seeded() {
		t.Fatalf("expected registry to be seeded from the deployment")
	}
}
