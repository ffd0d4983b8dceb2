package annotation

import "math"

// AnnotationAt materializes the track's annotation for the given frame, or
// returns nil when no annotation applies.
//
// The track contributes nothing outside [FirstFrame, LastFrame]. An exact
// keyframe hit is returned verbatim, even when the keyframe is marked
// outside: callers filtering on Outside decide visibility. Between
// keyframes the box is interpolated linearly unless the preceding keyframe
// marks the object outside, in which case the object is absent until the
// next keyframe is reached.
func (t *Track) AnnotationAt(frame int) *Annotation {
	if frame < t.FirstFrame() || frame > t.LastFrame() {
		return nil
	}

	for i := range t.Keyframes {
		kf := &t.Keyframes[i]
		if kf.Frame == frame {
			return t.materialize(kf, kf.Box, false)
		}
		if kf.Frame > frame {
			// i cannot be 0: frame >= FirstFrame was checked above.
			prev := &t.Keyframes[i-1]
			if prev.Outside {
				return nil
			}
			return t.materialize(prev, interpolateBox(prev, kf, frame), true)
		}
	}

	return nil
}

// materialize projects a keyframe into an Annotation. Occluded, Outside
// and Attributes are discrete state, never blended: an interpolated point
// copies them verbatim from the nearest preceding explicit keyframe.
func (t *Track) materialize(state *Shape, box BoundingBox, interpolated bool) *Annotation {
	return &Annotation{
		Label:        t.Label,
		Box:          box,
		Occluded:     state.Occluded,
		Outside:      state.Outside,
		Attributes:   state.Attributes.Clone(),
		TrackID:      t.ID,
		Interpolated: interpolated,
	}
}

// interpolateBox computes the box at frame, strictly between prev and next,
// interpolating each coordinate independently.
func interpolateBox(prev, next *Shape, frame int) BoundingBox {
	t := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
	return BoundingBox{
		X1: lerp(prev.Box.X1, next.Box.X1, t),
		Y1: lerp(prev.Box.Y1, next.Box.Y1, t),
		X2: lerp(prev.Box.X2, next.Box.X2, t),
		Y2: lerp(prev.Box.Y2, next.Box.Y2, t),
	}
}

func lerp(a, b int, t float64) int {
	return roundHalfAway(float64(a) + (float64(b)-float64(a))*t)
}

// roundHalfAway rounds to the nearest integer with ties going away from
// zero, in both directions, to keep round-trip stability.
func roundHalfAway(v float64) int {
	return int(math.Round(v))
}

// Materialize computes the full annotation set for a frame: standalone
// shapes at that exact frame in document order, followed by per-track
// interpolations in track order.
func Materialize(shapes []Shape, tracks []*Track, frame int) []Annotation {
	var out []Annotation
	for i := range shapes {
		if shapes[i].Frame != frame {
			continue
		}
		out = append(out, Annotation{
			Label:      shapes[i].Label,
			Box:        shapes[i].Box,
			Occluded:   shapes[i].Occluded,
			Outside:    shapes[i].Outside,
			Attributes: shapes[i].Attributes.Clone(),
			TrackID:    -1,
		})
	}
	for _, track := range tracks {
		if a := track.AnnotationAt(frame); a != nil {
			out = append(out, *a)
		}
	}
	return out
}

// FirstAnnotatedFrame returns the smallest frame index whose materialized
// annotation set is non-empty, or false when the dataset carries no
// annotations at all.
func FirstAnnotatedFrame(shapes []Shape, tracks []*Track) (int, bool) {
	first := -1
	for i := range shapes {
		if first == -1 || shapes[i].Frame < first {
			first = shapes[i].Frame
		}
	}
	for _, track := range tracks {
		// A track materializes at its own first keyframe even when that
		// keyframe is marked outside.
		if first == -1 || track.FirstFrame() < first {
			first = track.FirstFrame()
		}
	}
	if first == -1 {
		return 0, false
	}
	return first, true
}
