package annotation

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/eyedl/cvat-reader/pkg/ports"
)

// SchemaError reports malformed annotation data: an unknown label name, a
// malformed numeric field, or a violated structural invariant. It is fatal
// and surfaced to the caller at open time.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("annotation: schema: %s", e.Detail)
}

func schemaErrorf(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Detail: fmt.Sprintf(format, args...)}
}

// Build converts a raw annotation document into standalone shapes and
// keyframe tracks, validating label references and structural invariants
// along the way. Non-rectangle shapes are skipped.
func Build(labels []Label, doc Document, log ports.Logger) ([]Shape, []*Track, error) {
	if log == nil {
		log = noopLogger{}
	}
	log = log.WithComponent("annotation")

	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l.Name] = true
	}

	var shapes []Shape
	for _, raw := range doc.Shapes {
		if raw.Type != "rectangle" {
			log.Debug("Skipping annotation of type %s", raw.Type)
			continue
		}
		if !known[raw.Label] {
			return nil, nil, schemaErrorf("shape at frame %d references unknown label %q", raw.Frame, raw.Label)
		}
		shape, err := buildShape(raw, raw.Label)
		if err != nil {
			return nil, nil, err
		}
		shapes = append(shapes, shape)
	}

	var tracks []*Track
	for i, raw := range doc.Tracks {
		if !known[raw.Label] {
			return nil, nil, schemaErrorf("track %d references unknown label %q", i, raw.Label)
		}

		var keyframes []Shape
		for _, rs := range raw.Shapes {
			if rs.Type != "rectangle" {
				log.Debug("Skipping annotation of type %s", rs.Type)
				continue
			}
			shape, err := buildShape(rs, raw.Label)
			if err != nil {
				return nil, nil, err
			}
			keyframes = append(keyframes, shape)
		}
		if len(keyframes) == 0 {
			continue
		}

		sort.SliceStable(keyframes, func(a, b int) bool {
			return keyframes[a].Frame < keyframes[b].Frame
		})
		for k := 1; k < len(keyframes); k++ {
			if keyframes[k].Frame == keyframes[k-1].Frame {
				return nil, nil, schemaErrorf("track %d has duplicate keyframe at frame %d", i, keyframes[k].Frame)
			}
		}

		tracks = append(tracks, &Track{ID: len(tracks), Label: raw.Label, Keyframes: keyframes})
	}

	log.Debug("Built %d standalone shapes and %d tracks", len(shapes), len(tracks))
	return shapes, tracks, nil
}

func buildShape(raw RawShape, label string) (Shape, error) {
	box, err := buildBox(raw)
	if err != nil {
		return Shape{}, err
	}

	var attrs Attributes
	for _, ra := range raw.Attributes {
		attrs.Set(ra.Name, parseValue(ra.Value))
	}

	return Shape{
		Frame:      raw.Frame,
		Label:      label,
		Box:        box,
		Occluded:   raw.Occluded,
		Outside:    raw.Outside,
		Attributes: attrs,
	}, nil
}

func buildBox(raw RawShape) (BoundingBox, error) {
	if len(raw.Points) != 4 {
		return BoundingBox{}, schemaErrorf("rectangle at frame %d has %d points, want 4", raw.Frame, len(raw.Points))
	}
	for _, p := range raw.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return BoundingBox{}, schemaErrorf("rectangle at frame %d has malformed coordinate %v", raw.Frame, p)
		}
	}

	// Coordinates are truncated toward zero, matching the source data's
	// subpixel convention.
	box := BoundingBox{
		X1: int(raw.Points[0]),
		Y1: int(raw.Points[1]),
		X2: int(raw.Points[2]),
		Y2: int(raw.Points[3]),
	}
	if box.X1 > box.X2 || box.Y1 > box.Y2 {
		return BoundingBox{}, schemaErrorf("rectangle at frame %d violates x1<=x2, y1<=y2: %+v", raw.Frame, box)
	}
	return box, nil
}

// parseValue interprets a CVAT string-encoded attribute value as the
// narrowest kind that fits: bool, then number, then string.
func parseValue(s string) AttributeValue {
	switch s {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberValue(n)
	}
	return StringValue(s)
}

// noopLogger keeps Build usable without a logger.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func (n noopLogger) WithComponent(string) ports.Logger { return n }
