package health

import "errors"

// ErrCheckFailed is wrapped around the cause of an unhealthy probe, so a
// caller can tell a failed dependency from a missing or slow checker.
var ErrCheckFailed = errors.New("health: probe failed")

// ErrCheckTimeout marks a checker that did not answer within the
// aggregator's timeout.
var ErrCheckTimeout = errors.New("health: probe timed out")

// ErrCheckerNotFound is returned by Aggregator.Check for an unregistered name.
var ErrCheckerNotFound = errors.New("health: no such checker")
