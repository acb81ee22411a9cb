package ssh

import (
	"context"
	"testing"

	"github.com/larsan/pgha/internal/util/keygen"
)

func generateTestKey(t *testing.T) *keygen.KeyPair {
	t.Helper()
	keyPair, err := keygen.GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return keyPair
}

func TestNewClient_Success(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "10.70.1.11",
		User:       "root",
		PrivateKey: keyPair.PrivateKey,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if client == nil {
		t.Fatal("expected client, got nil")
	}

	if client.config.Port != defaultPort {
		t.Errorf("expected port %d, got %d", defaultPort, client.config.Port)
	}
	if client.config.DialTimeout != defaultDialTimeout {
		t.Errorf("expected timeout %v, got %v", defaultDialTimeout, client.config.DialTimeout)
	}
	if client.config.MaxRetries != defaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", defaultMaxRetries, client.config.MaxRetries)
	}
	if client.config.RetryDelay != defaultRetryDelay {
		t.Errorf("expected retry delay %v, got %v", defaultRetryDelay, client.config.RetryDelay)
	}
}

func TestNewClient_DoesNotMutateCaller(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "10.70.1.11",
		User:       "root",
		PrivateKey: keyPair.PrivateKey,
	}

	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != 0 {
		t.Errorf("caller config mutated: port = %d", cfg.Port)
	}
}

func TestNewClient_InvalidKey(t *testing.T) {
	cfg := &Config{
		Host:       "10.70.1.11",
		User:       "root",
		PrivateKey: []byte("invalid key"),
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for invalid private key, got nil")
	}
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(nil)
	if err == nil {
		t.Fatal("expected error for nil config, got nil")
	}
}

func TestNewClient_MissingFields(t *testing.T) {
	keyPair := generateTestKey(t)

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"empty host", &Config{User: "root", PrivateKey: keyPair.PrivateKey}},
		{"empty user", &Config{Host: "10.70.1.11", PrivateKey: keyPair.PrivateKey}},
		{"empty key", &Config{Host: "10.70.1.11", User: "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestRunner_UnknownHost(t *testing.T) {
	r := NewRunner()

	if _, err := r.Run(context.Background(), "node-a", "true"); err == nil {
		t.Fatal("expected error for unregistered host, got nil")
	}
}

func TestRunner_ReplacesHost(t *testing.T) {
	keyPair := generateTestKey(t)
	client, err := NewClient(&Config{Host: "10.70.1.11", User: "root", PrivateKey: keyPair.PrivateKey})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	replacement, err := NewClient(&Config{Host: "10.70.1.12", User: "root", PrivateKey: keyPair.PrivateKey})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	r := NewRunner()
	r.AddHost("node-a", client)
	r.AddHost("node-a", replacement)

	got, err := r.client("node-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != replacement {
		t.Error("expected the replacement client to be registered")
	}
}
