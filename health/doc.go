// Package health reports whether the token service can do its job.
//
// A Checker reports one component: the signing key pair (a sign and verify
// probe), the revocation store (a round trip to Redis, or the entry count
// of the in-memory store), and process memory. An Aggregator runs checkers
// concurrently under a deadline and folds their results into one Status.
//
// RegisterHandlers mounts the probes:
//
//	/healthz  liveness, always 200 while the process serves
//	/readyz   200 unless some check is unhealthy
//	/health   JSON detail for every check
package health
