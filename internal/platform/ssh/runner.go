package ssh

import (
	"context"
	"fmt"
	"sync"
)

// Runner multiplexes command execution over a set of named hosts. The
// provisioning pipeline addresses nodes by role, not by address, so
// the runner owns the role-to-client mapping.
type Runner struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRunner creates an empty runner.
func NewRunner() *Runner {
	return &Runner{clients: make(map[string]*Client)}
}

// AddHost registers a client under the given name, replacing any
// previous registration.
func (r *Runner) AddHost(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Run executes the command on the named host.
func (r *Runner) Run(ctx context.Context, host, command string) (string, error) {
	client, err := r.client(host)
	if err != nil {
		return "", err
	}
	return client.Execute(ctx, command)
}

// WaitReady blocks until the named host accepts SSH connections.
func (r *Runner) WaitReady(ctx context.Context, host string) error {
	client, err := r.client(host)
	if err != nil {
		return err
	}
	return client.WaitReady(ctx)
}

func (r *Runner) client(host string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[host]
	if !ok {
		return nil, fmt.Errorf("no ssh client registered for host %s", host)
	}
	return client, nil
}
