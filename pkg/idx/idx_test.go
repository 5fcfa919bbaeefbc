package idx_test

import (
	"testing"
	"time"

	"github.com/backdesk/backdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := idx.New()
	b := idx.New()
	require.Less(t, a.String(), b.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("round trips a generated id", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := idx.Parse("   ")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := idx.Parse("not-a-ulid")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := idx.NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)

	require.True(t, idx.Zero.Time().IsZero())
}
