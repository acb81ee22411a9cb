// Package validate checks a configured cluster from the outside: cloud
// resources are inspected through the platform API, the agents through
// SSH, and replication through the database admin surface. Checks are
// independent; a missing prerequisite skips a check instead of failing
// it, and the report distinguishes the two.
package validate
