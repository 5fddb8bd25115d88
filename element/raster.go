package element

import (
	"fmt"

	"github.com/hupe1980/spatialgo/lazy"
)

// raster is the payload shared by images and label maps: a multiscale
// pyramid of shaped byte arrays, scale 0 at full resolution.
type raster struct {
	ledgerHolder
	axes   []string
	dtype  DType
	scales []*lazy.Array
}

// Axes returns the axis names, e.g. ("c","y","x") for a 2D image.
func (r *raster) Axes() []string { return r.axes }

// DType returns the pixel dtype.
func (r *raster) DType() DType { return r.dtype }

// Scales returns the multiscale pyramid; index 0 is full resolution.
func (r *raster) Scales() []*lazy.Array { return r.scales }

// IndexDType is the pixel dtype: raster instances are pixel values.
func (r *raster) IndexDType() DType { return r.dtype }

func (r *raster) BackingFiles() []string {
	var out []string
	for _, s := range r.scales {
		out = append(out, s.BackingFiles()...)
	}
	return out
}

func (r *raster) validate(kind Kind, wantAxes [][]string) error {
	axesOK := false
	for _, want := range wantAxes {
		if equalStrings(r.axes, want) {
			axesOK = true
			break
		}
	}
	if !axesOK {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf("unsupported axes %v", r.axes)}
	}
	if len(r.scales) == 0 {
		return &ValidationError{Kind: kind, Reason: "raster must have at least one scale"}
	}
	for i, s := range r.scales {
		if len(s.Shape()) != len(r.axes) {
			return &ValidationError{
				Kind:   kind,
				Reason: fmt.Sprintf("scale %d has rank %d, axes declare %d", i, len(s.Shape()), len(r.axes)),
			}
		}
	}
	if r.dtype == DTypeInvalid || r.dtype.IsString() {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf("invalid raster dtype %s", r.dtype)}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	image2DAxes  = []string{"c", "y", "x"}
	image3DAxes  = []string{"c", "z", "y", "x"}
	labels2DAxes = []string{"y", "x"}
	labels3DAxes = []string{"z", "y", "x"}
)

// Image is a raster image element, 2D (c,y,x) or 3D (c,z,y,x).
type Image struct {
	raster
}

// NewImage builds and validates an image element.
func NewImage(axes []string, dtype DType, scales ...*lazy.Array) (*Image, error) {
	img := &Image{raster{axes: axes, dtype: dtype, scales: scales}}
	if err := img.raster.validate(KindImage, [][]string{image2DAxes, image3DAxes}); err != nil {
		return nil, err
	}
	return img, nil
}

func (i *Image) Kind() Kind { return KindImage }

// Labels is a raster label map, 2D (y,x) or 3D (z,y,x), with an integer
// pixel dtype: each pixel value is an instance identifier.
type Labels struct {
	raster
}

// NewLabels builds and validates a label map element.
func NewLabels(axes []string, dtype DType, scales ...*lazy.Array) (*Labels, error) {
	l := &Labels{raster{axes: axes, dtype: dtype, scales: scales}}
	if err := l.raster.validate(KindLabels, [][]string{labels2DAxes, labels3DAxes}); err != nil {
		return nil, err
	}
	if !dtype.IsInteger() {
		return nil, &ValidationError{Kind: KindLabels, Reason: fmt.Sprintf("label dtype must be integer, got %s", dtype)}
	}
	return l, nil
}

func (l *Labels) Kind() Kind { return KindLabels }
