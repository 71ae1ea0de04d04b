package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("empty slice", func(t *testing.T) {
		require := require.New(t)

		var s []int
		got := Map(s, func(i int) int { return i })
		require.Equal([]int{}, got)
	})
	t.Run("non-empty slice", func(t *testing.T) {
		require := require.New(t)

		s := []string{"a", "bb", "ccc"}
		got := Map(s, func(s string) int { return len(s) })
		require.Equal([]int{1, 2, 3}, got)
	})
}

func TestFilter(t *testing.T) {
	require := require.New(t)

	s := []string{"https://a.example/inbox", "", "https://b.example/inbox"}
	got := Filter(s, func(s string) bool { return s != "" })
	require.Equal([]string{"https://a.example/inbox", "https://b.example/inbox"}, got)
}

func TestContains(t *testing.T) {
	require := require.New(t)

	to := []string{"https://www.w3.org/ns/activitystreams#Public"}
	require.True(Contains(to, "https://www.w3.org/ns/activitystreams#Public"))
	require.False(Contains(to, "https://example.com/c/golang"))
	require.False(Contains(nil, "anything"))
}

func TestUniq(t *testing.T) {
	t.Run("preserves first appearance", func(t *testing.T) {
		require := require.New(t)

		got := Uniq([]string{"b", "a", "b", "c", "a"})
		require.Equal([]string{"b", "a", "c"}, got)
	})
	t.Run("empty slice", func(t *testing.T) {
		require := require.New(t)

		var s []string
		require.Equal([]string{}, Uniq(s))
	})
}
