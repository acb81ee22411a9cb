package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the declared timeout and retry policy shared by all
// stages. Every wait in the pipeline is a bounded poll against one of
// these values; there are no fixed sleeps.
type Timeouts struct {
	ServerCreate time.Duration // server creation operations
	ServerIP     time.Duration // waiting for server address assignment
	Delete       time.Duration // all delete operations
	BucketAccess time.Duration // secret store write-access confirmation
	PrimaryReady time.Duration // primary accepting replication connections
	StandbySync  time.Duration // standby reaching synchronous state
	Listener     time.Duration // listener answering through the probe
	Failover     time.Duration // role swap during failover

	RetryMaxAttempts  int           // default attempts for retryable calls
	RetryInitialDelay time.Duration // default initial backoff

	// Agent registration policy: observed behavior of the original
	// tooling was 3 attempts spaced 30 seconds apart; the backoff is
	// exponential here but keeps those constants.
	RegisterMaxAttempts  int
	RegisterInitialDelay time.Duration
}

// LoadTimeouts loads the timeout policy, overridable per value through
// PGHA_TIMEOUT_* / PGHA_RETRY_* environment variables.
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate: parseDuration("PGHA_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		ServerIP:     parseDuration("PGHA_TIMEOUT_SERVER_IP", 60*time.Second),
		Delete:       parseDuration("PGHA_TIMEOUT_DELETE", 5*time.Minute),
		BucketAccess: parseDuration("PGHA_TIMEOUT_BUCKET_ACCESS", 2*time.Minute),
		PrimaryReady: parseDuration("PGHA_TIMEOUT_PRIMARY_READY", 5*time.Minute),
		StandbySync:  parseDuration("PGHA_TIMEOUT_STANDBY_SYNC", 10*time.Minute),
		Listener:     parseDuration("PGHA_TIMEOUT_LISTENER", 3*time.Minute),
		Failover:     parseDuration("PGHA_TIMEOUT_FAILOVER", 5*time.Minute),

		RetryMaxAttempts:  parseInt("PGHA_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("PGHA_RETRY_INITIAL_DELAY", 1*time.Second),

		RegisterMaxAttempts:  parseInt("PGHA_REGISTER_MAX_ATTEMPTS", 3),
		RegisterInitialDelay: parseDuration("PGHA_REGISTER_INITIAL_DELAY", 30*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
