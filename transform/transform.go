// Package transform models the geometric transformations that place an
// element's data into named coordinate systems.
//
// A Transform is an opaque value with a small algebra: apply to a point,
// invert, compose. Three concrete forms exist: Identity, Affine (homogeneous
// matrix) and Sequence (ordered composition). Each spatial element carries a
// Ledger mapping coordinate-system names to transforms.
package transform

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSingular is returned when an affine matrix has no inverse.
	ErrSingular = errors.New("transform: matrix is singular")
	// ErrDimensionMismatch is returned when a point does not match the
	// transform's dimensionality.
	ErrDimensionMismatch = errors.New("transform: dimension mismatch")
)

// Transform places points from an element's intrinsic frame into a target
// coordinate system.
type Transform interface {
	// Apply maps p into the target frame. It returns a fresh slice.
	Apply(p []float64) ([]float64, error)
	// Inverse returns the inverse transform.
	Inverse() (Transform, error)
}

// Identity is the no-op transform.
type Identity struct{}

func (Identity) Apply(p []float64) ([]float64, error) {
	out := make([]float64, len(p))
	copy(out, p)
	return out, nil
}

func (Identity) Inverse() (Transform, error) { return Identity{}, nil }

// Affine is a homogeneous (d+1)x(d+1) matrix transform, row-major.
type Affine struct {
	Matrix [][]float64
}

// NewAffine validates and wraps a homogeneous matrix.
func NewAffine(matrix [][]float64) (*Affine, error) {
	n := len(matrix)
	if n < 2 {
		return nil, fmt.Errorf("transform: homogeneous matrix must be at least 2x2, got %d rows", n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("transform: matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	for j := 0; j < n-1; j++ {
		if matrix[n-1][j] != 0 {
			return nil, fmt.Errorf("transform: last matrix row must be [0 ... 0 1]")
		}
	}
	if matrix[n-1][n-1] != 1 {
		return nil, fmt.Errorf("transform: last matrix row must be [0 ... 0 1]")
	}
	return &Affine{Matrix: matrix}, nil
}

// Scale builds an affine transform scaling each axis by the given factor.
func Scale(factors ...float64) *Affine {
	n := len(factors) + 1
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i, f := range factors {
		m[i][i] = f
	}
	m[n-1][n-1] = 1
	return &Affine{Matrix: m}
}

// Translation builds an affine transform shifting each axis by the given offset.
func Translation(offsets ...float64) *Affine {
	n := len(offsets) + 1
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i, o := range offsets {
		m[i][n-1] = o
	}
	return &Affine{Matrix: m}
}

// Dim returns the spatial dimensionality of the transform.
func (a *Affine) Dim() int { return len(a.Matrix) - 1 }

func (a *Affine) Apply(p []float64) ([]float64, error) {
	d := a.Dim()
	if len(p) != d {
		return nil, fmt.Errorf("%w: point has %d coordinates, transform expects %d", ErrDimensionMismatch, len(p), d)
	}
	out := make([]float64, d)
	for i := 0; i < d; i++ {
		v := a.Matrix[i][d]
		for j := 0; j < d; j++ {
			v += a.Matrix[i][j] * p[j]
		}
		out[i] = v
	}
	return out, nil
}

func (a *Affine) Inverse() (Transform, error) {
	inv, err := invertMatrix(a.Matrix)
	if err != nil {
		return nil, err
	}
	return &Affine{Matrix: inv}, nil
}

// Sequence applies its transforms in order.
type Sequence struct {
	Transforms []Transform
}

func (s *Sequence) Apply(p []float64) ([]float64, error) {
	out := p
	var err error
	for _, t := range s.Transforms {
		out, err = t.Apply(out)
		if err != nil {
			return nil, err
		}
	}
	res := make([]float64, len(out))
	copy(res, out)
	return res, nil
}

func (s *Sequence) Inverse() (Transform, error) {
	inv := make([]Transform, len(s.Transforms))
	for i, t := range s.Transforms {
		ti, err := t.Inverse()
		if err != nil {
			return nil, err
		}
		inv[len(s.Transforms)-1-i] = ti
	}
	return &Sequence{Transforms: inv}, nil
}

// Compose chains transforms in application order, flattening nested sequences.
func Compose(ts ...Transform) Transform {
	flat := make([]Transform, 0, len(ts))
	for _, t := range ts {
		if seq, ok := t.(*Sequence); ok {
			flat = append(flat, seq.Transforms...)
			continue
		}
		flat = append(flat, t)
	}
	return Simplify(&Sequence{Transforms: flat})
}

// Simplify removes identity hops, multiplies adjacent affines and unwraps
// single-element sequences.
func Simplify(t Transform) Transform {
	seq, ok := t.(*Sequence)
	if !ok {
		return t
	}
	var out []Transform
	for _, step := range seq.Transforms {
		if _, isID := step.(Identity); isID {
			continue
		}
		if a, okA := step.(*Affine); okA && len(out) > 0 {
			if prev, okP := out[len(out)-1].(*Affine); okP && prev.Dim() == a.Dim() {
				out[len(out)-1] = &Affine{Matrix: matMul(a.Matrix, prev.Matrix)}
				continue
			}
		}
		out = append(out, step)
	}
	switch len(out) {
	case 0:
		return Identity{}
	case 1:
		if a, okA := out[0].(*Affine); okA && isIdentityMatrix(a.Matrix) {
			return Identity{}
		}
		return out[0]
	default:
		return &Sequence{Transforms: out}
	}
}

// IsIdentity reports whether t is equivalent to the identity transform.
func IsIdentity(t Transform) bool {
	switch v := t.(type) {
	case Identity:
		return true
	case *Affine:
		return isIdentityMatrix(v.Matrix)
	case *Sequence:
		return IsIdentity(Simplify(v))
	default:
		return false
	}
}

func isIdentityMatrix(m [][]float64) bool {
	for i, row := range m {
		for j, v := range row {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(v-want) > 1e-12 {
				return false
			}
		}
	}
	return true
}

// matMul returns a*b for square matrices of the same size.
func matMul(a, b [][]float64) [][]float64 {
	n := len(a)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var v float64
			for k := 0; k < n; k++ {
				v += a[i][k] * b[k][j]
			}
			out[i][j] = v
		}
	}
	return out
}

// invertMatrix inverts a square matrix via Gauss-Jordan elimination.
func invertMatrix(m [][]float64) ([][]float64, error) {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}
	for col := 0; col < n; col++ {
		pivot := -1
		best := 0.0
		for row := col; row < n; row++ {
			if abs := math.Abs(aug[row][col]); abs > best {
				best = abs
				pivot = row
			}
		}
		if pivot < 0 || best < 1e-12 {
			return nil, ErrSingular
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		pv := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			f := aug[row][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[row][j] -= f * aug[col][j]
			}
		}
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = aug[i][n:]
	}
	return out, nil
}
