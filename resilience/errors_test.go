package resilience

import (
	"errors"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{ErrCircuitOpen, ErrRateLimitExceeded, ErrBulkheadFull}
	for i, err := range errs {
		if !strings.HasPrefix(err.Error(), "resilience: ") {
			t.Errorf("%v lacks the package prefix", err)
		}
		for j, other := range errs {
			if i != j && errors.Is(err, other) {
				t.Errorf("%v matches %v", err, other)
			}
		}
	}
}
