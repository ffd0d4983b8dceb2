package annotation

// Raw document types produced by the archive accessor. They mirror the
// structure of the CVAT annotation document after format-specific
// bookkeeping (attribute spec-id resolution) has been applied, but before
// any validation.

// Document is the raw annotation document for one task.
type Document struct {
	Shapes []RawShape
	Tracks []RawTrack
}

// RawShape is one unvalidated shape record. For standalone shapes Label
// is set per shape; for track keyframes the label lives on the track.
type RawShape struct {
	Type       string
	Frame      int
	Points     []float64
	Occluded   bool
	Outside    bool
	Label      string
	Attributes []RawAttribute
}

// RawTrack is one unvalidated track record.
type RawTrack struct {
	Label  string
	Shapes []RawShape
}

// RawAttribute is one unvalidated name/value pair. CVAT serializes all
// values as strings.
type RawAttribute struct {
	Name  string
	Value string
}
