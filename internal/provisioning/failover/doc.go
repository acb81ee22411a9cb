// Package failover swaps the primary and standby roles of a running
// cluster. The planned path is lossless and requires synchronous
// replication to be healthy before touching anything; the forced path
// promotes the surviving standby and must be explicitly told that data
// loss is acceptable.
package failover
