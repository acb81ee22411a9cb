package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/larsan/pgha/internal/config"
	sshplatform "github.com/larsan/pgha/internal/platform/ssh"
	"github.com/larsan/pgha/internal/provisioning"
)

// lazyRunner is the remote executor for the provision stage. Node
// addresses and the admin key only exist partway through the run, so
// clients are built on first use from the pipeline state instead of up
// front.
type lazyRunner struct {
	mu     sync.Mutex
	state  *provisioning.State
	user   string
	runner *sshplatform.Runner
	bound  map[string]bool
}

func newLazyRunner(state *provisioning.State, user string) *lazyRunner {
	return &lazyRunner{
		state:  state,
		user:   user,
		runner: sshplatform.NewRunner(),
		bound:  make(map[string]bool),
	}
}

func (l *lazyRunner) bind(host string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound[host] {
		return nil
	}

	addr, ok := l.state.PublicIPs[host]
	if !ok {
		return fmt.Errorf("no address known for host %s yet", host)
	}
	if len(l.state.SSHPrivateKey) == 0 {
		return fmt.Errorf("no ssh key in state yet")
	}

	client, err := sshplatform.NewClient(&sshplatform.Config{
		Host:       addr,
		Port:       config.SSHPort,
		User:       l.user,
		PrivateKey: l.state.SSHPrivateKey,
	})
	if err != nil {
		return fmt.Errorf("failed to build ssh client for %s: %w", host, err)
	}
	l.runner.AddHost(host, client)
	l.bound[host] = true
	return nil
}

func (l *lazyRunner) Run(ctx context.Context, host, command string) (string, error) {
	if err := l.bind(host); err != nil {
		return "", err
	}
	return l.runner.Run(ctx, host, command)
}

func (l *lazyRunner) WaitReady(ctx context.Context, host string) error {
	if err := l.bind(host); err != nil {
		return err
	}
	return l.runner.WaitReady(ctx, host)
}
