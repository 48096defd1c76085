package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"203.0.113.42", "203.0.113.0/24"},
		{"::ffff:203.0.113.42", "203.0.113.0/24"},
		{"2001:db8:abcd:12::1", "2001:db8:abcd::/48"},
		{"unknown", "invalid"},
		{"", "invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnonymizeIP(tt.in), tt.in)
	}
}
