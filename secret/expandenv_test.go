package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("PRESENT", "ok")
	t.Setenv("EMPTY", "")
	t.Setenv("X", "y")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "literal", in: "ButgersBuses", want: "ButgersBuses"},
		{name: "braced", in: "pass-${PRESENT}", want: "pass-ok"},
		{name: "set but empty", in: "${EMPTY}", want: ""},
		{name: "dollar escape", in: "$$${X}", want: "$y"},
		{name: "escaped literal dollar", in: "pa$$word", want: "pa$word"},
		{name: "missing", in: "a=${PRESENT} b=${MISSING_ONE} c=${MISSING_TWO}", wantErr: ErrMissingEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExpandEnvStrict() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if !strings.Contains(err.Error(), "MISSING_ONE, MISSING_TWO") {
					t.Errorf("error should list missing names in order, got: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict() = %q, want %q", got, tt.want)
			}
		})
	}
}
