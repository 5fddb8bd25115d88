package query

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
)

func newInMemoryCoords(coords [][]float64) *lazy.Array {
	return lazy.NewArray([]int{len(coords), len(coords[0])}, element.EncodeCoords(coords))
}

// CropImage restricts a raster image to the box. Only spatial axes are
// cropped; the channel axis is kept whole. The result is nil when the box
// misses the raster entirely.
func CropImage(ctx context.Context, img *element.Image, box BoundingBox) (*element.Image, error) {
	scales, _, err := cropScales(ctx, img.Axes(), img.DType(), img.Scales(), box, false)
	if err != nil || scales == nil {
		return nil, err
	}
	out, err := element.NewImage(img.Axes(), img.DType(), scales...)
	if err != nil {
		return nil, err
	}
	out.SetTransforms(img.Transforms().Clone())
	return out, nil
}

// CropLabels restricts a label map to the box and collects the instance
// identifiers present in the surviving pixels. Pixel value 0 is background
// and never counts as an instance. The element is nil when the box misses
// the raster; the instance set is always returned.
func CropLabels(ctx context.Context, l *element.Labels, box BoundingBox) (*element.Labels, *Instances, error) {
	scales, surviving, err := cropScales(ctx, l.Axes(), l.DType(), l.Scales(), box, true)
	if err != nil {
		return nil, nil, err
	}
	if scales == nil {
		return nil, surviving, nil
	}
	out, err := element.NewLabels(l.Axes(), l.DType(), scales...)
	if err != nil {
		return nil, nil, err
	}
	out.SetTransforms(l.Transforms().Clone())
	return out, surviving, nil
}

// cropScales cuts every pyramid level to the box, scaling the full
// resolution ranges down proportionally for coarser levels.
func cropScales(ctx context.Context, axes []string, dtype element.DType, scales []*lazy.Array, box BoundingBox, collect bool) ([]*lazy.Array, *Instances, error) {
	surviving := NewInstances()

	full := scales[0].Shape()
	ranges, ok := boxRanges(axes, full, box)
	if !ok {
		return nil, surviving, nil
	}

	out := make([]*lazy.Array, len(scales))
	for level, sc := range scales {
		shape := sc.Shape()
		lo := make([]int, len(shape))
		hi := make([]int, len(shape))
		for d := range shape {
			ratio := float64(shape[d]) / float64(full[d])
			lo[d] = int(math.Floor(float64(ranges[d][0]) * ratio))
			hi[d] = int(math.Ceil(float64(ranges[d][1]) * ratio))
			if hi[d] > shape[d] {
				hi[d] = shape[d]
			}
			if lo[d] >= hi[d] {
				return nil, surviving, nil
			}
		}
		data, err := sc.Materialize(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("query: materialize scale %d: %w", level, err)
		}
		cropped, croppedShape := cropBlock(data, shape, lo, hi, dtype.Size())
		out[level] = lazy.NewArray(croppedShape, cropped)

		if collect && level == 0 {
			n := 1
			for _, d := range croppedShape {
				n *= d
			}
			for i := 0; i < n; i++ {
				if v := dtype.Uint64At(cropped, i); v != 0 {
					surviving.Add(v)
				}
			}
		}
	}
	return out, surviving, nil
}

// boxRanges maps the box onto integer index ranges per axis. Spatial axes
// (x, y, z) honor the box; other axes are kept whole.
func boxRanges(axes []string, shape []int, box BoundingBox) ([][2]int, bool) {
	ranges := make([][2]int, len(axes))
	for d, axis := range axes {
		ranges[d] = [2]int{0, shape[d]}
		r, ok := box.Bounds[axis]
		if !ok {
			continue
		}
		lo := int(math.Floor(r[0]))
		hi := int(math.Ceil(r[1])) + 1
		if lo < 0 {
			lo = 0
		}
		if hi > shape[d] {
			hi = shape[d]
		}
		if lo >= hi {
			return nil, false
		}
		ranges[d] = [2]int{lo, hi}
	}
	return ranges, true
}

// cropBlock copies the row-major sub-block [lo,hi) out of data.
func cropBlock(data []byte, shape []int, lo, hi []int, itemSize int) ([]byte, []int) {
	outShape := make([]int, len(shape))
	outLen := itemSize
	for d := range shape {
		outShape[d] = hi[d] - lo[d]
		outLen *= outShape[d]
	}
	out := make([]byte, 0, outLen)

	strides := make([]int, len(shape))
	stride := itemSize
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}

	idx := make([]int, len(shape))
	copy(idx, lo)
	for {
		// copy one contiguous run along the last axis
		off := 0
		for d := 0; d < len(shape)-1; d++ {
			off += idx[d] * strides[d]
		}
		last := len(shape) - 1
		start := off + lo[last]*strides[last]
		end := off + hi[last]*strides[last]
		out = append(out, data[start:end]...)

		// advance the outer indices
		d := last - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < hi[d] {
				break
			}
			idx[d] = lo[d]
		}
		if d < 0 {
			break
		}
	}
	return out, outShape
}
