package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	const mib = 1 << 20

	t.Run("12MiB in 5MiB parts", func(t *testing.T) {
		got := Split(12*mib, 5*mib)
		assert.Equal(t, []Range{
			{Start: 0, End: 5 * mib},
			{Start: 5 * mib, End: 10 * mib},
			{Start: 10 * mib, End: 12 * mib},
		}, got)
	})

	t.Run("exact multiple has no short tail", func(t *testing.T) {
		got := Split(10*mib, 5*mib)
		require.Len(t, got, 2)
		assert.Equal(t, int64(5*mib), got[1].Len())
	})

	t.Run("empty input yields no parts", func(t *testing.T) {
		assert.Empty(t, Split(0, 5*mib))
		assert.Empty(t, Split(-1, 5*mib))
	})

	t.Run("non-positive chunk size uses default", func(t *testing.T) {
		got := Split(DefaultPartSize+1, 0)
		require.Len(t, got, 2)
		assert.Equal(t, DefaultPartSize, got[0].Len())
		assert.Equal(t, int64(1), got[1].Len())
	})

	t.Run("ranges are contiguous and cover input", func(t *testing.T) {
		for _, tc := range []struct{ n, chunk int64 }{
			{1, 1}, {1, 7}, {7, 1}, {100, 7}, {99, 33}, {5*mib + 3, mib},
		} {
			got := Split(tc.n, tc.chunk)
			require.NotEmpty(t, got)

			var next, total int64
			for i, r := range got {
				assert.Equal(t, next, r.Start, "n=%d chunk=%d range %d", tc.n, tc.chunk, i)
				assert.Positive(t, r.Len())
				assert.LessOrEqual(t, r.Len(), tc.chunk)
				if i < len(got)-1 {
					assert.Equal(t, tc.chunk, r.Len())
				}
				next = r.End
				total += r.Len()
			}
			assert.Equal(t, tc.n, total)
			assert.Equal(t, int((tc.n+tc.chunk-1)/tc.chunk), len(got))
		}
	})
}
