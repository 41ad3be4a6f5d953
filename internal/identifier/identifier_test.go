package identifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.True(t, id.Equal(parsed))
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := Parse("not-a-valid-uuid")
	require.Error(t, err)
}

func TestNewGeneratesUniqueValues(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		_, dup := seen[id.String()]
		require.False(t, dup, "unexpected duplicate identifier")
		seen[id.String()] = struct{}{}
	}
}

func TestZeroValueIsZero(t *testing.T) {
	t.Parallel()

	var id Identifier
	require.True(t, id.IsZero())

	generated := New()
	require.False(t, generated.IsZero())
}

func TestEqualityViaStringForm(t *testing.T) {
	t.Parallel()

	a := New()
	b, err := Parse(a.String())
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c := New()
	require.False(t, a.Equal(c))
}
