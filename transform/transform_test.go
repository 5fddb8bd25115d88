package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineApply(t *testing.T) {
	tests := []struct {
		name     string
		tf       Transform
		in       []float64
		expected []float64
	}{
		{
			name:     "identity",
			tf:       Identity{},
			in:       []float64{1, 2},
			expected: []float64{1, 2},
		},
		{
			name:     "scale",
			tf:       Scale(2, 3),
			in:       []float64{1, 2},
			expected: []float64{2, 6},
		},
		{
			name:     "translation",
			tf:       Translation(10, -5),
			in:       []float64{1, 2},
			expected: []float64{11, -3},
		},
		{
			name:     "sequence scale then translate",
			tf:       Compose(Scale(2, 2), Translation(1, 1)),
			in:       []float64{3, 4},
			expected: []float64{7, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.tf.Apply(tt.in)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.expected, out, 1e-9)
		})
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	a := Scale(2, 4)
	inv, err := a.Inverse()
	require.NoError(t, err)

	p := []float64{3, 5}
	fwd, err := a.Apply(p)
	require.NoError(t, err)
	back, err := inv.Apply(fwd)
	require.NoError(t, err)

	assert.InDeltaSlice(t, p, back, 1e-9)
}

func TestAffineInverseSingular(t *testing.T) {
	a, err := NewAffine([][]float64{
		{1, 0, 0},
		{1, 0, 0},
		{0, 0, 1},
	})
	require.NoError(t, err)

	_, err = a.Inverse()
	assert.ErrorIs(t, err, ErrSingular)
}

func TestAffineDimensionMismatch(t *testing.T) {
	_, err := Scale(2, 2).Apply([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSimplify(t *testing.T) {
	t.Run("collapses identities", func(t *testing.T) {
		s := Compose(Identity{}, Identity{})
		assert.True(t, IsIdentity(Simplify(s)))
	})

	t.Run("multiplies adjacent affines", func(t *testing.T) {
		s := Simplify(Compose(Scale(2, 2), Scale(0.5, 0.5)))
		assert.True(t, IsIdentity(s))
	})

	t.Run("keeps net effect", func(t *testing.T) {
		composed := Compose(Scale(2, 3), Translation(1, 1), Identity{})
		simplified := Simplify(composed)

		p := []float64{5, 7}
		want, err := composed.Apply(p)
		require.NoError(t, err)
		got, err := simplified.Apply(p)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-9)
	})
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	ledger := Ledger{
		"global": Scale(2, 2),
		"local":  Identity{},
		"stage":  Compose(Scale(2, 2), Translation(3, 4)),
	}

	data, err := json.Marshal(ledger)
	require.NoError(t, err)

	var decoded Ledger
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.ElementsMatch(t, ledger.CoordinateSystems(), decoded.CoordinateSystems())
	for cs, tf := range ledger {
		assert.True(t, Equal(tf, decoded[cs]), "coordinate system %s", cs)
	}
}

func TestLedgerClone(t *testing.T) {
	ledger := Ledger{"global": Identity{}}
	clone := ledger.Clone()
	clone["extra"] = Scale(2, 2)

	assert.Len(t, ledger, 1)
	assert.Len(t, clone, 2)
}
