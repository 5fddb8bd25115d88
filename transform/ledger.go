package transform

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Ledger maps coordinate-system names to the transform placing an element's
// data into that system. A nil Ledger behaves like an empty one for reads.
type Ledger map[string]Transform

// Clone returns a shallow copy of the ledger (transform values are shared).
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for cs, t := range l {
		out[cs] = t
	}
	return out
}

// CoordinateSystems returns the ledger's keys, sorted.
func (l Ledger) CoordinateSystems() []string {
	out := make([]string, 0, len(l))
	for cs := range l {
		out = append(out, cs)
	}
	sort.Strings(out)
	return out
}

// wire is the stable persisted form of a Transform.
type wire struct {
	Type       string      `json:"type"`
	Matrix     [][]float64 `json:"matrix,omitempty"`
	Transforms []wire      `json:"transformations,omitempty"`
}

func toWire(t Transform) (wire, error) {
	switch v := t.(type) {
	case Identity:
		return wire{Type: "identity"}, nil
	case *Affine:
		return wire{Type: "affine", Matrix: v.Matrix}, nil
	case *Sequence:
		steps := make([]wire, len(v.Transforms))
		for i, step := range v.Transforms {
			w, err := toWire(step)
			if err != nil {
				return wire{}, err
			}
			steps[i] = w
		}
		return wire{Type: "sequence", Transforms: steps}, nil
	default:
		return wire{}, fmt.Errorf("transform: cannot encode %T", t)
	}
}

func fromWire(w wire) (Transform, error) {
	switch w.Type {
	case "identity":
		return Identity{}, nil
	case "affine":
		return NewAffine(w.Matrix)
	case "sequence":
		steps := make([]Transform, len(w.Transforms))
		for i, sw := range w.Transforms {
			t, err := fromWire(sw)
			if err != nil {
				return nil, err
			}
			steps[i] = t
		}
		return &Sequence{Transforms: steps}, nil
	default:
		return nil, fmt.Errorf("transform: unknown transform type %q", w.Type)
	}
}

// MarshalJSON implements json.Marshaler.
func (l Ledger) MarshalJSON() ([]byte, error) {
	m := make(map[string]wire, len(l))
	for cs, t := range l {
		w, err := toWire(t)
		if err != nil {
			return nil, err
		}
		m[cs] = w
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var m map[string]wire
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Ledger, len(m))
	for cs, w := range m {
		t, err := fromWire(w)
		if err != nil {
			return err
		}
		out[cs] = t
	}
	*l = out
	return nil
}

// Equal reports whether two transforms have the same persisted form. It is
// intended for tests and round-trip comparisons, not geometric equivalence.
func Equal(a, b Transform) bool {
	wa, errA := toWire(a)
	wb, errB := toWire(b)
	if errA != nil || errB != nil {
		return false
	}
	ba, _ := json.Marshal(wa)
	bb, _ := json.Marshal(wb)
	return string(ba) == string(bb)
}
