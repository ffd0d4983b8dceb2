// Package cvat is the public facade: it opens a CVAT task-backup archive
// and exposes it as a sequential, seekable stream of frames with their
// materialized annotation sets.
//
// Typical use:
//
//	ds, err := cvat.Open("task_backup.zip")
//	if err != nil {
//		return err
//	}
//	defer ds.Close()
//
//	ds.SeekFirstAnnotation()
//	for {
//		frame, err := ds.Next()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		...
//	}
package cvat

import (
	"image"
	"io"

	"github.com/eyedl/cvat-reader/pkg/adapters/logger"
	"github.com/eyedl/cvat-reader/pkg/adapters/mp4video"
	"github.com/eyedl/cvat-reader/pkg/adapters/nullvideo"
	"github.com/eyedl/cvat-reader/pkg/adapters/osfilesystem"
	"github.com/eyedl/cvat-reader/pkg/annotation"
	"github.com/eyedl/cvat-reader/pkg/archive"
	"github.com/eyedl/cvat-reader/pkg/ports"
)

// Options configures dataset opening.
type Options struct {
	// LoadVideo selects the decoding media source. When false the media
	// member is never opened and every Frame.Image is nil.
	LoadVideo bool

	// Logger receives progress and debug output. Nil means quiet.
	Logger ports.Logger

	// FFmpegPath is an optional custom path to the ffmpeg binary used
	// for frame decoding.
	FFmpegPath string
}

// DefaultOptions returns Options with video loading enabled.
func DefaultOptions() Options {
	return Options{LoadVideo: true}
}

// Frame is the per-step product of iteration: a frame index, its decoded
// image (nil when video loading is disabled or the source is null), and
// the annotations active at that frame. Frames are transient views; they
// are not cached across iteration steps.
type Frame struct {
	Index       int
	Image       image.Image
	Annotations []annotation.Annotation
}

// Dataset owns the parsed annotation model, the media source, and the
// iteration cursor. A Dataset is not safe for concurrent use; two
// datasets over the same archive are independent.
type Dataset struct {
	labels []annotation.Label
	shapes []annotation.Shape
	tracks []*annotation.Track

	arch  *archive.Archive
	media ports.MediaSource
	seq   sequencer
	log   ports.Logger

	closed bool
}

// Open opens the archive at path with default options.
func Open(path string) (*Dataset, error) {
	return OpenWithOptions(path, DefaultOptions())
}

// OpenWithOptions opens the archive at path. The caller must Close the
// returned dataset; defer ds.Close() immediately after a successful open
// so the media handle and extraction directory are released on every
// exit path.
func OpenWithOptions(path string, opts Options) (*Dataset, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	log.Info("Opening %s", path)

	arch, err := archive.Open(path, mp4video.NewProber(), osfilesystem.New(), log)
	if err != nil {
		return nil, err
	}

	shapes, tracks, err := annotation.Build(arch.Labels(), arch.Document(), log)
	if err != nil {
		arch.Close()
		return nil, err
	}

	var media ports.MediaSource
	if opts.LoadVideo {
		src, err := mp4video.New(arch.MediaPath(), mp4video.Options{FFmpegPath: opts.FFmpegPath}, log)
		if err != nil {
			arch.Close()
			return nil, err
		}
		media = src
	} else {
		log.Debug("Video loading disabled")
		media = nullvideo.New()
	}

	frameCount := arch.FrameCount()
	if frameCount == 0 {
		frameCount = media.FrameCount()
	}
	if frameCount == 0 {
		frameCount = lastAnnotatedFrame(shapes, tracks) + 1
	}

	ds := &Dataset{
		labels: arch.Labels(),
		shapes: shapes,
		tracks: tracks,
		arch:   arch,
		media:  media,
		seq:    newSequencer(frameCount),
		log:    log,
	}
	log.Info("Dataset open: %d labels, %d frames", len(ds.labels), frameCount)
	return ds, nil
}

// Labels returns the task's label list. The returned slice is a copy.
func (d *Dataset) Labels() []annotation.Label {
	out := make([]annotation.Label, len(d.labels))
	copy(out, d.labels)
	return out
}

// FrameCount returns the number of frames iteration covers.
func (d *Dataset) FrameCount() int {
	return d.seq.frameCount
}

// Position returns the frame index the next call to Next will yield.
func (d *Dataset) Position() int {
	return d.seq.position
}

// Seek moves the cursor to index. An index outside [0, FrameCount) fails
// with a *RangeError and leaves the cursor unchanged.
func (d *Dataset) Seek(index int) error {
	if err := d.seq.seek(index); err != nil {
		return err
	}
	d.log.Debug("Seek to frame %d", index)
	return nil
}

// SeekFirstAnnotation advances the cursor to the smallest frame index
// whose annotation set is non-empty. When the dataset carries no
// annotations at all, the cursor moves to end-of-stream and subsequent
// iteration is immediately exhausted.
func (d *Dataset) SeekFirstAnnotation() {
	first, ok := annotation.FirstAnnotatedFrame(d.shapes, d.tracks)
	if !ok || d.seq.seek(first) != nil {
		d.log.Debug("No annotations in dataset")
		d.seq.exhaust()
		return
	}
	d.log.Debug("First annotation at frame %d", first)
}

// AnnotationsAt materializes the annotation set for an arbitrary frame
// index without moving the cursor.
func (d *Dataset) AnnotationsAt(index int) []annotation.Annotation {
	return annotation.Materialize(d.shapes, d.tracks, index)
}

// Next yields the frame at the cursor and advances by one. At the end of
// the stream it returns io.EOF; that is the normal terminal condition,
// not a dataset failure. A per-frame decode failure is returned as a
// *ports.DecodeError with the cursor already advanced, so the caller may
// keep iterating or seek elsewhere.
func (d *Dataset) Next() (*Frame, error) {
	pos, ok := d.seq.next()
	if !ok {
		return nil, io.EOF
	}

	img, err := d.media.Decode(pos)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Index:       pos,
		Image:       img,
		Annotations: annotation.Materialize(d.shapes, d.tracks, pos),
	}, nil
}

// Close releases the media source and removes the archive extraction
// directory. Close is idempotent; only the first call releases anything.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.log.Info("Closing dataset")

	var err error
	if d.media != nil {
		err = d.media.Close()
	}
	if d.arch != nil {
		if aerr := d.arch.Close(); err == nil {
			err = aerr
		}
	}
	return err
}

func lastAnnotatedFrame(shapes []annotation.Shape, tracks []*annotation.Track) int {
	last := -1
	for i := range shapes {
		if shapes[i].Frame > last {
			last = shapes[i].Frame
		}
	}
	for _, t := range tracks {
		if t.LastFrame() > last {
			last = t.LastFrame()
		}
	}
	return last
}
