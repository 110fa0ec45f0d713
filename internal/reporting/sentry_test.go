package reporting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain error is unchanged",
			input:    "failed to fetch plants",
			expected: "failed to fetch plants",
		},
		{
			name:     "ipv4 host and port is redacted",
			input:    "dial tcp [127.0.0.1]:5432: connection refused",
			expected: "dial tcp <host>: connection refused",
		},
		{
			name:     "unbracketed ipv4 host and port is redacted",
			input:    "read tcp 10.0.0.5:443: i/o timeout",
			expected: "read tcp <host>: i/o timeout",
		},
		{
			name:     "ipv6 host and port is redacted",
			input:    "dial tcp [::1]:5432: connection refused",
			expected: "dial tcp <host>: connection refused",
		},
		{
			name:     "different hosts sanitize to the same string",
			input:    "dial tcp [127.0.0.1]:5432: connection refused",
			expected: sanitizeError("dial tcp 192.168.1.10:5432: connection refused"),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, c.expected, sanitizeError(c.input))
		})
	}
}
