// Package labels provides consistent labeling for Hetzner Cloud
// resources. Every resource a run creates carries the cluster name and
// run ID, which makes selector-based lookup and cleanup possible.
package labels

import (
	"fmt"
	"sort"
	"strings"
)

// Standard label keys.
const (
	KeyCluster   = "cluster"
	KeyRunID     = "run-id"
	KeyRole      = "role"
	KeyListener  = "listener"
	KeyManagedBy = "managed-by"
)

// ManagedBy value stamped on every resource.
const ManagedByPGHA = "pgha"

// Builder accumulates labels for one resource.
type Builder struct {
	labels map[string]string
}

// NewBuilder creates a builder with cluster, run ID and managed-by
// pre-set.
func NewBuilder(cluster, runID string) *Builder {
	return &Builder{
		labels: map[string]string{
			KeyCluster:   cluster,
			KeyRunID:     runID,
			KeyManagedBy: ManagedByPGHA,
		},
	}
}

// WithRole adds the node role label.
func (b *Builder) WithRole(role string) *Builder {
	b.labels[KeyRole] = role
	return b
}

// WithListener adds the listener name label.
func (b *Builder) WithListener(name string) *Builder {
	b.labels[KeyListener] = name
	return b
}

// With adds an arbitrary label.
func (b *Builder) With(key, value string) *Builder {
	b.labels[key] = value
	return b
}

// Build returns the label map.
func (b *Builder) Build() map[string]string {
	out := make(map[string]string, len(b.labels))
	for k, v := range b.labels {
		out[k] = v
	}
	return out
}

// Selector returns a label selector matching every resource of the
// given run.
func Selector(cluster, runID string) string {
	return fmt.Sprintf("%s=%s,%s=%s", KeyCluster, cluster, KeyRunID, runID)
}

// SelectorFrom renders an arbitrary label map as a selector with
// deterministic key order.
func SelectorFrom(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, labels[k]))
	}
	return strings.Join(parts, ",")
}
