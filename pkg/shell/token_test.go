// pkg/shell/token_test.go
package shell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "plain words",
			line:     "use port_scanner",
			expected: []string{"use", "port_scanner"},
		},
		{
			name:     "collapses whitespace runs",
			line:     "  set \t target   10.0.0.5 ",
			expected: []string{"set", "target", "10.0.0.5"},
		},
		{
			name:     "double quoted segment stays one token",
			line:     `set user_agent "PenKit Web Scanner"`,
			expected: []string{"set", "user_agent", "PenKit Web Scanner"},
		},
		{
			name:     "single quoted segment stays one token",
			line:     `set data 'id=1 name=admin'`,
			expected: []string{"set", "data", "id=1 name=admin"},
		},
		{
			name:     "quote glued to a word",
			line:     `set cookie session='abc def'`,
			expected: []string{"set", "cookie", "session=abc def"},
		},
		{
			name:     "escaped space",
			line:     `use port\ scanner`,
			expected: []string{"use", "port scanner"},
		},
		{
			name:     "empty quoted token survives",
			line:     `set data ""`,
			expected: []string{"set", "data", ""},
		},
		{
			name:     "empty line",
			line:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			line:     "   \t  ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Split(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestSplit_UnclosedQuote(t *testing.T) {
	_, err := Split(`set data "unterminated`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestSplit_TrailingEscape(t *testing.T) {
	_, err := Split(`use nmap\`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
}
