package observe

import (
	"errors"
	"fmt"
	"testing"
)

type rejection struct{ reason string }

func (r *rejection) Error() string        { return "rejected: " + r.reason }
func (r *rejection) RejectReason() string { return r.reason }

func TestReasonOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: "error"},
		{name: "reasoner", err: &rejection{reason: "expired"}, want: "expired"},
		{name: "wrapped reasoner", err: fmt.Errorf("validate: %w", &rejection{reason: "superseded"}), want: "superseded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReasonOf(tt.err); got != tt.want {
				t.Errorf("ReasonOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpMeta(t *testing.T) {
	tests := []struct {
		meta     OpMeta
		wantID   string
		wantSpan string
	}{
		{OpMeta{Component: "session", Name: "issue"}, "session.issue", "auth.op.session.issue"},
		{OpMeta{Name: "authorize"}, "authorize", "auth.op.authorize"},
	}

	for _, tt := range tests {
		t.Run(tt.wantID, func(t *testing.T) {
			if got := tt.meta.OpID(); got != tt.wantID {
				t.Errorf("OpID() = %q, want %q", got, tt.wantID)
			}
			if got := tt.meta.SpanName(); got != tt.wantSpan {
				t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
			}
		})
	}

	if err := (OpMeta{}).Validate(); !errors.Is(err, ErrMissingOpName) {
		t.Errorf("Validate() = %v, want ErrMissingOpName", err)
	}
}
