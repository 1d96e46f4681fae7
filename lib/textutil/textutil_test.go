package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeToken(t *testing.T) {
	require.Equal(t, "student-1", NormalizeToken("student-1"))
	require.Equal(t, "ab_123_45", NormalizeToken("  AB 123/45 "))
	require.Equal(t, "иванов_и_и", NormalizeToken("Иванов И. И."))
	require.Equal(t, "x", NormalizeToken("...x..."))
}
