// Package destroy tears down everything a run created, in dependency
// order. Every delete tolerates an already-missing resource, so a
// partially failed teardown can simply be rerun.
package destroy
