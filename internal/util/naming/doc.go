// Package naming derives cloud resource names from the cluster name and
// run identifier so every stage of the pipeline resolves the same
// resources without sharing state beyond the hand-off record.
package naming
