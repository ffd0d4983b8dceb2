// Package archive opens a CVAT task-backup archive: a zip container with a
// task.json descriptor, an annotations.json document, and a media member
// under data/. It extracts the members to a temporary directory, parses
// the descriptors into raw annotation documents, and locates the media
// member by probing decodability rather than trusting file extensions.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eyedl/cvat-reader/pkg/annotation"
	"github.com/eyedl/cvat-reader/pkg/ports"
)

const (
	taskMember        = "task.json"
	annotationsMember = "annotations.json"
	dataDir           = "data"
)

// NotFoundError reports that the archive is missing a required member.
// It is fatal at open time.
type NotFoundError struct {
	Member string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("archive: missing required member %q", e.Member)
}

// TaskMeta carries the frame-range bookkeeping of task.json.
type TaskMeta struct {
	Name       string
	StartFrame int
	StopFrame  int
}

// Archive is an opened, extracted CVAT task backup. It owns the extraction
// directory until Close.
type Archive struct {
	dir       string
	labels    []annotation.Label
	doc       annotation.Document
	meta      TaskMeta
	mediaPath string
	log       ports.Logger
}

// Open extracts the zip at path and parses its descriptors. The prober
// decides which data/ member is the media file.
func Open(path string, prober ports.MediaProber, fsys ports.FileSystem, log ports.Logger) (*Archive, error) {
	log = log.WithComponent("archive")

	dir, err := os.MkdirTemp("", "cvat-reader-*")
	if err != nil {
		return nil, fmt.Errorf("create extraction dir: %w", err)
	}

	a := &Archive{dir: dir, log: log}
	if err := a.load(path, prober, fsys); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return a, nil
}

func (a *Archive) load(path string, prober ports.MediaProber, fsys ports.FileSystem) error {
	a.log.Debug("Extracting %s to %s", path, a.dir)
	if err := extract(path, a.dir, fsys); err != nil {
		return err
	}

	taskData, err := fsys.ReadFile(filepath.Join(a.dir, taskMember))
	if err != nil {
		return &NotFoundError{Member: taskMember}
	}
	labels, meta, specs, err := parseTask(taskData)
	if err != nil {
		return err
	}
	a.labels = labels
	a.meta = meta

	annData, err := fsys.ReadFile(filepath.Join(a.dir, annotationsMember))
	if err != nil {
		return &NotFoundError{Member: annotationsMember}
	}
	doc, err := parseAnnotations(annData, specs)
	if err != nil {
		return err
	}
	a.doc = doc

	mediaPath, err := locateMedia(filepath.Join(a.dir, dataDir), prober, a.log)
	if err != nil {
		return err
	}
	a.mediaPath = mediaPath

	a.log.Debug("Archive open: %d labels, %d shapes, %d tracks", len(a.labels), len(a.doc.Shapes), len(a.doc.Tracks))
	return nil
}

// Labels returns the task's label list.
func (a *Archive) Labels() []annotation.Label {
	return a.labels
}

// Document returns the raw annotation document.
func (a *Archive) Document() annotation.Document {
	return a.doc
}

// Meta returns the task metadata.
func (a *Archive) Meta() TaskMeta {
	return a.meta
}

// FrameCount returns the frame count declared by task.json, or 0 when the
// descriptor does not carry one.
func (a *Archive) FrameCount() int {
	if a.meta.StopFrame > 0 {
		return a.meta.StopFrame + 1
	}
	return 0
}

// MediaPath returns the extracted path of the archive's media member.
func (a *Archive) MediaPath() string {
	return a.mediaPath
}

// Close removes the extraction directory. Close is idempotent.
func (a *Archive) Close() error {
	if a.dir == "" {
		return nil
	}
	a.log.Debug("Removing extraction dir %s", a.dir)
	dir := a.dir
	a.dir = ""
	return os.RemoveAll(dir)
}

// extract unpacks every zip member below dst, refusing member names that
// escape the destination directory.
func extract(path, dst string, fsys ports.FileSystem) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(dst, filepath.FromSlash(member.Name))
		if !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
			return fmt.Errorf("archive member %q escapes extraction dir", member.Name)
		}

		rc, err := member.Open()
		if err != nil {
			return fmt.Errorf("open member %q: %w", member.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read member %q: %w", member.Name, err)
		}
		if err := fsys.WriteFile(target, data); err != nil {
			return fmt.Errorf("write member %q: %w", member.Name, err)
		}
	}
	return nil
}

// locateMedia returns the first data/ member the prober accepts as a
// decodable media container. Extensions are never trusted.
func locateMedia(dir string, prober ports.MediaProber, log ports.Logger) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &NotFoundError{Member: dataDir}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		p := filepath.Join(dir, name)
		if prober.IsMedia(p) {
			log.Debug("Located media member %s", name)
			return p, nil
		}
		log.Debug("Skipping non-media member %s", name)
	}
	return "", &NotFoundError{Member: dataDir + " media member"}
}
