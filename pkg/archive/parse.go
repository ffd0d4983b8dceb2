package archive

import (
	"encoding/json"
	"fmt"

	"github.com/eyedl/cvat-reader/pkg/annotation"
)

// JSON wire types for the CVAT task-backup descriptors.

type taskDoc struct {
	Name   string      `json:"name"`
	Data   taskData    `json:"data"`
	Labels []taskLabel `json:"labels"`
}

type taskData struct {
	StartFrame int `json:"start_frame"`
	StopFrame  int `json:"stop_frame"`
}

type taskLabel struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Attributes []attributeSpec `json:"attributes"`
}

type attributeSpec struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type annotationsDoc struct {
	Shapes []jsonShape `json:"shapes"`
	Tracks []jsonTrack `json:"tracks"`
}

type jsonShape struct {
	Type       string          `json:"type"`
	Frame      int             `json:"frame"`
	Points     []float64       `json:"points"`
	Occluded   bool            `json:"occluded"`
	Outside    bool            `json:"outside"`
	Label      string          `json:"label"`
	Attributes []jsonAttribute `json:"attributes"`
}

type jsonTrack struct {
	Label  string      `json:"label"`
	Frame  int         `json:"frame"`
	Shapes []jsonShape `json:"shapes"`
}

type jsonAttribute struct {
	SpecID int    `json:"spec_id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// parseTask decodes task.json into labels and metadata, and builds the
// attribute spec-id to name table used by annotations.json.
func parseTask(data []byte) ([]annotation.Label, TaskMeta, map[int]string, error) {
	var doc taskDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, TaskMeta{}, nil, &annotation.SchemaError{Detail: fmt.Sprintf("task.json: %v", err)}
	}

	labels := make([]annotation.Label, 0, len(doc.Labels))
	specs := make(map[int]string)
	nextSpecID := 1
	for i, l := range doc.Labels {
		id := l.ID
		if id == 0 {
			id = i + 1
		}
		labels = append(labels, annotation.Label{ID: id, Name: l.Name, Color: l.Color})

		// Backups without explicit attribute ids number specs
		// sequentially in document order.
		for _, spec := range l.Attributes {
			sid := spec.ID
			if sid == 0 {
				sid = nextSpecID
			}
			specs[sid] = spec.Name
			nextSpecID++
		}
	}

	meta := TaskMeta{
		Name:       doc.Name,
		StartFrame: doc.Data.StartFrame,
		StopFrame:  doc.Data.StopFrame,
	}
	return labels, meta, specs, nil
}

// parseAnnotations decodes annotations.json into a raw annotation
// document, resolving attribute spec ids to names. The document is a
// one-element array of per-job annotation sets; only the first is used,
// as upstream does.
func parseAnnotations(data []byte, specs map[int]string) (annotation.Document, error) {
	var jobs []annotationsDoc
	if err := json.Unmarshal(data, &jobs); err != nil {
		return annotation.Document{}, &annotation.SchemaError{Detail: fmt.Sprintf("annotations.json: %v", err)}
	}
	if len(jobs) == 0 {
		return annotation.Document{}, nil
	}
	job := jobs[0]

	var doc annotation.Document
	for _, s := range job.Shapes {
		raw, err := convertShape(s, specs)
		if err != nil {
			return annotation.Document{}, err
		}
		doc.Shapes = append(doc.Shapes, raw)
	}
	for _, t := range job.Tracks {
		rt := annotation.RawTrack{Label: t.Label}
		for _, s := range t.Shapes {
			raw, err := convertShape(s, specs)
			if err != nil {
				return annotation.Document{}, err
			}
			rt.Shapes = append(rt.Shapes, raw)
		}
		doc.Tracks = append(doc.Tracks, rt)
	}
	return doc, nil
}

func convertShape(s jsonShape, specs map[int]string) (annotation.RawShape, error) {
	raw := annotation.RawShape{
		Type:     s.Type,
		Frame:    s.Frame,
		Points:   s.Points,
		Occluded: s.Occluded,
		Outside:  s.Outside,
		Label:    s.Label,
	}
	for _, attr := range s.Attributes {
		name := attr.Name
		if name == "" {
			resolved, ok := specs[attr.SpecID]
			if !ok {
				return annotation.RawShape{}, &annotation.SchemaError{
					Detail: fmt.Sprintf("shape at frame %d references unknown attribute spec %d", s.Frame, attr.SpecID),
				}
			}
			name = resolved
		}
		raw.Attributes = append(raw.Attributes, annotation.RawAttribute{Name: name, Value: attr.Value})
	}
	return raw, nil
}
