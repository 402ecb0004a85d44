// Package keystest provides shared RSA key pairs for tests.
package keystest

import (
	"sync"
	"testing"

	"github.com/jonwraymond/sessionauth/keys"
)

var (
	once    sync.Once
	primary *keys.KeyPair
	foreign *keys.KeyPair
	genErr  error
)

func generate() {
	primary, genErr = keys.Generate(0)
	if genErr != nil {
		return
	}
	foreign, genErr = keys.Generate(0)
}

// Pair returns a key pair shared by every test in the process.
func Pair(tb testing.TB) *keys.KeyPair {
	tb.Helper()
	once.Do(generate)
	if genErr != nil {
		tb.Fatalf("keystest: generate: %v", genErr)
	}
	return primary
}

// Foreign returns a second key pair, distinct from Pair.
func Foreign(tb testing.TB) *keys.KeyPair {
	tb.Helper()
	once.Do(generate)
	if genErr != nil {
		tb.Fatalf("keystest: generate: %v", genErr)
	}
	return foreign
}
