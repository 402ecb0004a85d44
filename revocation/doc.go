// Package revocation tracks the single active session token per subject.
//
// Registering a token for a subject supersedes the subject's previous
// token. IsActive answers by exact token value through a secondary index,
// so it does not scan subjects.
//
// MemoryStore serves a single process. RedisStore shares state across
// processes and enforces the same invariant with server-side scripts.
package revocation
