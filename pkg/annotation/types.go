// Package annotation implements the CVAT annotation model: labels,
// standalone shapes, keyframe tracks, and the interpolation that
// materializes the annotation set for an arbitrary frame index.
package annotation

// Label describes one annotation class of the task.
type Label struct {
	ID    int
	Name  string
	Color string // hex color such as "#fa3253"
}

// BoundingBox is an axis-aligned rectangle in integer pixel coordinates.
// Invariant: X1 <= X2 and Y1 <= Y2.
type BoundingBox struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() int {
	return b.X2 - b.X1
}

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() int {
	return b.Y2 - b.Y1
}

// ValueKind discriminates the payload of an AttributeValue.
type ValueKind int

const (
	// KindString is a free-text attribute value.
	KindString ValueKind = iota
	// KindNumber is a numeric attribute value.
	KindNumber
	// KindBool is a checkbox attribute value.
	KindBool
)

// AttributeValue is a tagged variant holding one attribute value.
// CVAT serializes every value as a string; the builder parses it into
// the narrowest kind that fits.
type AttributeValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue returns an AttributeValue of kind KindString.
func StringValue(s string) AttributeValue {
	return AttributeValue{Kind: KindString, Str: s}
}

// NumberValue returns an AttributeValue of kind KindNumber.
func NumberValue(n float64) AttributeValue {
	return AttributeValue{Kind: KindNumber, Num: n}
}

// BoolValue returns an AttributeValue of kind KindBool.
func BoolValue(b bool) AttributeValue {
	return AttributeValue{Kind: KindBool, Bool: b}
}

// Attribute is one named attribute of a shape.
type Attribute struct {
	Name  string
	Value AttributeValue
}

// Attributes is an ordered attribute mapping. Duplicate names follow
// last-write-wins: the later value replaces the earlier one in place.
type Attributes []Attribute

// Set stores a value under name, replacing an existing entry in place.
func (a *Attributes) Set(name string, value AttributeValue) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: value})
}

// Get looks up a value by name.
func (a Attributes) Get(name string) (AttributeValue, bool) {
	for i := range a {
		if a[i].Name == name {
			return a[i].Value, true
		}
	}
	return AttributeValue{}, false
}

// Clone returns an independent copy of the attribute list.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Shape is a single explicit annotation instance at one frame. Shapes
// appear standalone (non-tracked) or as the keyframes of a Track.
type Shape struct {
	Frame      int
	Label      string
	Box        BoundingBox
	Occluded   bool
	Outside    bool
	Attributes Attributes
}

// Track is a label's trajectory across frames, defined by sparse
// keyframes ordered strictly by ascending frame index. A track spans
// from its first keyframe's frame to its last; it never extrapolates
// beyond either end.
type Track struct {
	ID        int
	Label     string
	Keyframes []Shape
}

// FirstFrame returns the frame index of the first keyframe.
func (t *Track) FirstFrame() int {
	return t.Keyframes[0].Frame
}

// LastFrame returns the frame index of the last keyframe.
func (t *Track) LastFrame() int {
	return t.Keyframes[len(t.Keyframes)-1].Frame
}

// Annotation is the materialized per-frame projection of a standalone
// Shape or an interpolated point on a Track. It is ephemeral: recomputed
// on each frame access, always scoped to the frame it was requested for.
type Annotation struct {
	Label      string
	Box        BoundingBox
	Occluded   bool
	Outside    bool
	Attributes Attributes

	// TrackID identifies the originating track, or -1 for a standalone
	// shape.
	TrackID int

	// Interpolated is true when the box was computed between keyframes
	// rather than taken verbatim from an explicit shape.
	Interpolated bool
}
