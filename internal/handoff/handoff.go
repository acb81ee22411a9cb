// Package handoff persists the outputs of a provisioning run so later
// stages can pick them up. The file is plain KEY=value, safe to source
// from a shell.
package handoff

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Record holds everything the configure and validate stages need to
// find the infrastructure a provision run created.
type Record struct {
	ClusterName string
	RunID       string
	Location    string

	NetworkName string
	SubnetCIDR  string

	NodeAName      string
	NodeAPublicIP  string
	NodeAPrivateIP string
	NodeBName      string
	NodeBPublicIP  string
	NodeBPrivateIP string

	LoadBalancerName string
	ListenerIP       string

	SecretsBucket string
	SecretsPrefix string

	SSHUser           string
	SSHPrivateKeyPath string
}

const (
	keyClusterName       = "PGHA_CLUSTER_NAME"
	keyRunID             = "PGHA_RUN_ID"
	keyLocation          = "PGHA_LOCATION"
	keyNetworkName       = "PGHA_NETWORK_NAME"
	keySubnetCIDR        = "PGHA_SUBNET_CIDR"
	keyNodeAName         = "PGHA_NODE_A_NAME"
	keyNodeAPublicIP     = "PGHA_NODE_A_PUBLIC_IP"
	keyNodeAPrivateIP    = "PGHA_NODE_A_PRIVATE_IP"
	keyNodeBName         = "PGHA_NODE_B_NAME"
	keyNodeBPublicIP     = "PGHA_NODE_B_PUBLIC_IP"
	keyNodeBPrivateIP    = "PGHA_NODE_B_PRIVATE_IP"
	keyLoadBalancerName  = "PGHA_LB_NAME"
	keyListenerIP        = "PGHA_LISTENER_IP"
	keySecretsBucket     = "PGHA_SECRETS_BUCKET"
	keySecretsPrefix     = "PGHA_SECRETS_PREFIX"
	keySSHUser           = "PGHA_SSH_USER"
	keySSHPrivateKeyPath = "PGHA_SSH_KEY_PATH"
)

// Validate checks that the fields later stages cannot work without are
// present.
func (r *Record) Validate() error {
	var missing []string
	required := map[string]string{
		keyClusterName:    r.ClusterName,
		keyRunID:          r.RunID,
		keyNodeAName:      r.NodeAName,
		keyNodeAPublicIP:  r.NodeAPublicIP,
		keyNodeAPrivateIP: r.NodeAPrivateIP,
		keyNodeBName:      r.NodeBName,
		keyNodeBPublicIP:  r.NodeBPublicIP,
		keyNodeBPrivateIP: r.NodeBPrivateIP,
	}
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("handoff record missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Record) pairs() map[string]string {
	return map[string]string{
		keyClusterName:       r.ClusterName,
		keyRunID:             r.RunID,
		keyLocation:          r.Location,
		keyNetworkName:       r.NetworkName,
		keySubnetCIDR:        r.SubnetCIDR,
		keyNodeAName:         r.NodeAName,
		keyNodeAPublicIP:     r.NodeAPublicIP,
		keyNodeAPrivateIP:    r.NodeAPrivateIP,
		keyNodeBName:         r.NodeBName,
		keyNodeBPublicIP:     r.NodeBPublicIP,
		keyNodeBPrivateIP:    r.NodeBPrivateIP,
		keyLoadBalancerName:  r.LoadBalancerName,
		keyListenerIP:        r.ListenerIP,
		keySecretsBucket:     r.SecretsBucket,
		keySecretsPrefix:     r.SecretsPrefix,
		keySSHUser:           r.SSHUser,
		keySSHPrivateKeyPath: r.SSHPrivateKeyPath,
	}
}

func (r *Record) set(key, value string) {
	switch key {
	case keyClusterName:
		r.ClusterName = value
	case keyRunID:
		r.RunID = value
	case keyLocation:
		r.Location = value
	case keyNetworkName:
		r.NetworkName = value
	case keySubnetCIDR:
		r.SubnetCIDR = value
	case keyNodeAName:
		r.NodeAName = value
	case keyNodeAPublicIP:
		r.NodeAPublicIP = value
	case keyNodeAPrivateIP:
		r.NodeAPrivateIP = value
	case keyNodeBName:
		r.NodeBName = value
	case keyNodeBPublicIP:
		r.NodeBPublicIP = value
	case keyNodeBPrivateIP:
		r.NodeBPrivateIP = value
	case keyLoadBalancerName:
		r.LoadBalancerName = value
	case keyListenerIP:
		r.ListenerIP = value
	case keySecretsBucket:
		r.SecretsBucket = value
	case keySecretsPrefix:
		r.SecretsPrefix = value
	case keySSHUser:
		r.SSHUser = value
	case keySSHPrivateKeyPath:
		r.SSHPrivateKeyPath = value
	}
	// Unknown keys are ignored so old files keep loading.
}

// Save writes the record to path, creating parent-readable output only.
func Save(path string, r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	pairs := r.pairs()
	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("# Written by pgha provision. Safe to source from a shell.\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, pairs[key])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write handoff file: %w", err)
	}
	return nil
}

// Load reads a record from path and validates it.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open handoff file: %w", err)
	}
	defer f.Close()

	r := &Record{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("handoff file %s:%d: expected KEY=value", path, line)
		}
		r.set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read handoff file: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
