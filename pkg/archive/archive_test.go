package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eyedl/cvat-reader/pkg/adapters/osfilesystem"
	"github.com/eyedl/cvat-reader/pkg/annotation"
	"github.com/eyedl/cvat-reader/pkg/mocks"
)

const testTaskJSON = `{
	"name": "match-42",
	"data": {"start_frame": 0, "stop_frame": 99},
	"labels": [
		{"name": "person", "color": "#fa3253", "attributes": [{"name": "quality"}]},
		{"name": "ball", "color": "#33ddff", "attributes": []}
	]
}`

const testAnnotationsJSON = `[{
	"version": 0,
	"tags": [],
	"shapes": [
		{"type": "rectangle", "frame": 2, "label": "ball", "points": [1, 2, 3, 4],
		 "occluded": false, "outside": false, "attributes": []}
	],
	"tracks": [
		{"label": "person", "frame": 0, "shapes": [
			{"type": "rectangle", "frame": 0, "points": [0, 0, 10, 10],
			 "occluded": false, "outside": false,
			 "attributes": [{"spec_id": 1, "value": "good"}]},
			{"type": "rectangle", "frame": 10, "points": [10, 10, 20, 20],
			 "occluded": true, "outside": false, "attributes": []}
		]}
	]
}]`

func writeZip(t *testing.T, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create member %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write member %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func fullArchive(t *testing.T) string {
	return writeZip(t, map[string]string{
		"task.json":        testTaskJSON,
		"annotations.json": testAnnotationsJSON,
		"data/notes.txt":   "not a video",
		"data/video.bin":   "fake video payload",
	})
}

// prober that accepts the fake payload by content, not extension.
func fakeVideoProber() *mocks.MediaProber {
	return &mocks.MediaProber{
		IsMediaFunc: func(path string) bool {
			data, err := os.ReadFile(path)
			return err == nil && strings.HasPrefix(string(data), "fake video")
		},
	}
}

func TestOpen_ParsesArchive(t *testing.T) {
	prober := fakeVideoProber()
	a, err := Open(fullArchive(t), prober, osfilesystem.New(), &mocks.Logger{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	labels := a.Labels()
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Name != "person" || labels[0].Color != "#fa3253" {
		t.Errorf("unexpected label: %+v", labels[0])
	}

	if a.Meta().Name != "match-42" {
		t.Errorf("expected task name match-42, got %q", a.Meta().Name)
	}
	if a.FrameCount() != 100 {
		t.Errorf("expected frame count 100 from stop_frame, got %d", a.FrameCount())
	}

	doc := a.Document()
	if len(doc.Shapes) != 1 || len(doc.Tracks) != 1 {
		t.Fatalf("expected 1 shape and 1 track, got %d/%d", len(doc.Shapes), len(doc.Tracks))
	}
	// Attribute spec ids resolve to names via task.json.
	attrs := doc.Tracks[0].Shapes[0].Attributes
	if len(attrs) != 1 || attrs[0].Name != "quality" || attrs[0].Value != "good" {
		t.Errorf("expected spec 1 resolved to quality=good, got %+v", attrs)
	}

	if filepath.Base(a.MediaPath()) != "video.bin" {
		t.Errorf("expected media member video.bin, got %s", a.MediaPath())
	}
	// The non-media member was probed and rejected, not skipped by
	// extension.
	if len(prober.ProbedPaths) != 2 {
		t.Errorf("expected both data members probed, got %v", prober.ProbedPaths)
	}
}

func TestOpen_MissingMembers(t *testing.T) {
	tests := []struct {
		name    string
		members map[string]string
	}{
		{
			name: "no annotations.json",
			members: map[string]string{
				"task.json":      testTaskJSON,
				"data/video.bin": "fake video payload",
			},
		},
		{
			name: "no task.json",
			members: map[string]string{
				"annotations.json": testAnnotationsJSON,
				"data/video.bin":   "fake video payload",
			},
		},
		{
			name: "no media member",
			members: map[string]string{
				"task.json":        testTaskJSON,
				"annotations.json": testAnnotationsJSON,
				"data/notes.txt":   "not a video",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeZip(t, tt.members), fakeVideoProber(), osfilesystem.New(), &mocks.Logger{})
			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
		})
	}
}

func TestOpen_MalformedDescriptors(t *testing.T) {
	tests := []struct {
		name    string
		members map[string]string
	}{
		{
			name: "task.json not json",
			members: map[string]string{
				"task.json":        "{broken",
				"annotations.json": testAnnotationsJSON,
				"data/video.bin":   "fake video payload",
			},
		},
		{
			name: "non-numeric coordinate",
			members: map[string]string{
				"task.json": testTaskJSON,
				"annotations.json": `[{"shapes": [{"type": "rectangle", "frame": 0,
					"label": "ball", "points": [1, "two", 3, 4], "attributes": []}], "tracks": []}]`,
				"data/video.bin": "fake video payload",
			},
		},
		{
			name: "unknown attribute spec",
			members: map[string]string{
				"task.json": testTaskJSON,
				"annotations.json": `[{"shapes": [], "tracks": [{"label": "person", "shapes": [
					{"type": "rectangle", "frame": 0, "points": [0, 0, 1, 1],
					 "attributes": [{"spec_id": 99, "value": "x"}]}]}]}]`,
				"data/video.bin": "fake video payload",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeZip(t, tt.members), fakeVideoProber(), osfilesystem.New(), &mocks.Logger{})
			var schemaErr *annotation.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
		})
	}
}

func TestClose_RemovesExtractionDir(t *testing.T) {
	a, err := Open(fullArchive(t), fakeVideoProber(), osfilesystem.New(), &mocks.Logger{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dir := filepath.Dir(a.MediaPath())
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected extraction dir removed, stat returned %v", err)
	}
	// Idempotent.
	if err := a.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
