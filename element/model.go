package element

import "fmt"

// Model is the validated schema of a value: the discriminant used to route
// elements into the correct registry during bulk construction.
type Model uint8

const (
	// ModelInvalid represents an unrecognized schema.
	ModelInvalid Model = iota
	// ModelImage2D is a (c,y,x) raster image.
	ModelImage2D
	// ModelImage3D is a (c,z,y,x) raster image.
	ModelImage3D
	// ModelLabels2D is a (y,x) label map.
	ModelLabels2D
	// ModelLabels3D is a (z,y,x) label map.
	ModelLabels3D
	// ModelPoints is a point cloud.
	ModelPoints
	// ModelShapes is a shape collection.
	ModelShapes
	// ModelTable is an annotation table.
	ModelTable
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelImage2D:
		return "Image2D"
	case ModelImage3D:
		return "Image3D"
	case ModelLabels2D:
		return "Labels2D"
	case ModelLabels3D:
		return "Labels3D"
	case ModelPoints:
		return "Points"
	case ModelShapes:
		return "Shapes"
	case ModelTable:
		return "Table"
	default:
		return "Invalid"
	}
}

// Kind returns the registry kind a model routes to.
func (m Model) Kind() Kind {
	switch m {
	case ModelImage2D, ModelImage3D:
		return KindImage
	case ModelLabels2D, ModelLabels3D:
		return KindLabels
	case ModelPoints:
		return KindPoints
	case ModelShapes:
		return KindShapes
	case ModelTable:
		return KindTable
	default:
		return KindInvalid
	}
}

// ModelOf classifies a value by inspecting its validated schema.
func ModelOf(v Value) (Model, error) {
	switch e := v.(type) {
	case *Image:
		if len(e.Axes()) == 4 {
			return ModelImage3D, nil
		}
		return ModelImage2D, nil
	case *Labels:
		if len(e.Axes()) == 3 {
			return ModelLabels3D, nil
		}
		return ModelLabels2D, nil
	case *Points:
		return ModelPoints, nil
	case *Shapes:
		return ModelShapes, nil
	case *Table:
		return ModelTable, nil
	default:
		return ModelInvalid, &UnknownSchemaError{Value: v}
	}
}

// Validate runs the structural schema check for a value. Violations are
// fatal at insertion time and never silently coerced.
func Validate(v Value) error {
	switch e := v.(type) {
	case *Image:
		return e.raster.validate(KindImage, [][]string{image2DAxes, image3DAxes})
	case *Labels:
		if err := e.raster.validate(KindLabels, [][]string{labels2DAxes, labels3DAxes}); err != nil {
			return err
		}
		if !e.DType().IsInteger() {
			return &ValidationError{Kind: KindLabels, Reason: fmt.Sprintf("label dtype must be integer, got %s", e.DType())}
		}
		return nil
	case *Points:
		return e.validate()
	case *Shapes:
		return e.validate()
	case *Table:
		return e.validate()
	default:
		return &UnknownSchemaError{Value: v}
	}
}
