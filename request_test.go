package tex2png

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"complete", Request{Expression: "x", Size: "800", Output: "out.png"}, nil},
		{"empty expression is allowed", Request{Size: "800", Output: "out.png"}, nil},
		{"size is opaque", Request{Expression: "x", Size: "not-a-number", Output: "out.png"}, nil},
		{"missing size", Request{Expression: "x", Output: "out.png"}, ErrEmptySize},
		{"missing output", Request{Expression: "x", Size: "800"}, ErrEmptyOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRequest_String(t *testing.T) {
	t.Parallel()

	s := Request{Expression: "secret", Size: "800", Output: "out.png"}.String()
	assert.Contains(t, s, "size=800")
	assert.Contains(t, s, "output=out.png")
	assert.NotContains(t, s, "secret")
}
