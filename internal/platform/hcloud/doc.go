// Package hcloud wraps the Hetzner Cloud API behind small per-concern
// interfaces. Create operations have ensure semantics: get-or-create with
// validation of pre-existing resources, so re-running a stage after a full
// success never duplicates resources.
package hcloud
