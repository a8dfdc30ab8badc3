package height_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/height"
)

func TestOrdering(t *testing.T) {
	t.Parallel()

	h1 := height.New(0, 10)
	h2 := height.New(0, 11)
	h3 := height.New(1, 1)

	assert.True(t, h1.LT(h2))
	assert.True(t, h2.GT(h1))
	assert.True(t, h1.LTE(h1))
	assert.True(t, h1.GTE(h1))
	assert.True(t, h1.EQ(height.New(0, 10)))
	assert.True(t, h2.LT(h3), "revision dominates the comparison")
}

func TestZero(t *testing.T) {
	t.Parallel()

	assert.True(t, height.Zero.IsZero())
	assert.False(t, height.New(0, 1).IsZero())
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    height.Height
		wantErr bool
	}{
		{name: "valid", input: "4-100", want: height.New(4, 100)},
		{name: "zero", input: "0-0", want: height.Zero},
		{name: "missing dash", input: "4100", wantErr: true},
		{name: "non numeric", input: "a-b", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := height.Parse(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.input, got.String())
		})
	}
}

func TestIncrement(t *testing.T) {
	t.Parallel()

	h := height.New(2, 5)
	assert.Equal(t, height.New(2, 6), h.Increment())
}
