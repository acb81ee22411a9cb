// Package config defines the deployment configuration for a pgha cluster:
// cluster identity, network layout, server and volume sizing, secret store
// coordinates, and the declared timeout/retry policy shared by all stages.
//
// Configuration is loaded once from YAML, defaulted, validated, and treated
// as immutable afterwards. The run identifier that ties the three stages
// together is explicit (see RunID) rather than derived from wall-clock time.
package config
