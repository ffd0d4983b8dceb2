package annotation

import "testing"

func box(x1, y1, x2, y2 int) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func keyframe(frame int, b BoundingBox) Shape {
	return Shape{Frame: frame, Box: b}
}

func TestAnnotationAt_ExactKeyframe(t *testing.T) {
	track := &Track{
		ID:    0,
		Label: "person",
		Keyframes: []Shape{
			keyframe(0, box(0, 0, 10, 10)),
			keyframe(7, box(3, 4, 13, 14)),
			keyframe(10, box(10, 10, 20, 20)),
		},
	}

	for _, kf := range track.Keyframes {
		got := track.AnnotationAt(kf.Frame)
		if got == nil {
			t.Fatalf("frame %d: expected annotation, got nil", kf.Frame)
		}
		if got.Box != kf.Box {
			t.Errorf("frame %d: expected keyframe box %+v verbatim, got %+v", kf.Frame, kf.Box, got.Box)
		}
		if got.Interpolated {
			t.Errorf("frame %d: keyframe hit must not be marked interpolated", kf.Frame)
		}
	}
}

func TestAnnotationAt_Midpoint(t *testing.T) {
	track := &Track{
		Label: "person",
		Keyframes: []Shape{
			keyframe(0, box(0, 0, 10, 10)),
			keyframe(10, box(10, 10, 20, 20)),
		},
	}

	got := track.AnnotationAt(5)
	if got == nil {
		t.Fatal("expected annotation at frame 5")
	}
	expected := box(5, 5, 15, 15)
	if got.Box != expected {
		t.Errorf("expected %+v, got %+v", expected, got.Box)
	}
	if !got.Interpolated {
		t.Error("frame 5 must be marked interpolated")
	}
	if got.Label != "person" {
		t.Errorf("expected track label, got %q", got.Label)
	}
}

func TestAnnotationAt_RoundingHalfAwayFromZero(t *testing.T) {
	// Between (0,0,1,1)@0 and (1,1,2,2)@2 the midpoint lands on .5 for
	// every coordinate; ties round away from zero.
	track := &Track{
		Keyframes: []Shape{
			keyframe(0, box(0, 0, 1, 1)),
			keyframe(2, box(1, 1, 2, 2)),
		},
	}

	got := track.AnnotationAt(1)
	if got == nil {
		t.Fatal("expected annotation at frame 1")
	}
	expected := box(1, 1, 2, 2)
	if got.Box != expected {
		t.Errorf("expected %+v, got %+v", expected, got.Box)
	}
}

func TestAnnotationAt_OutsideSpan(t *testing.T) {
	track := &Track{
		Keyframes: []Shape{
			keyframe(5, box(0, 0, 10, 10)),
			keyframe(10, box(10, 10, 20, 20)),
		},
	}

	tests := []struct {
		name  string
		frame int
	}{
		{"before first keyframe", 4},
		{"after last keyframe", 11},
		{"far before", 0},
		{"far after", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := track.AnnotationAt(tt.frame); got != nil {
				t.Errorf("frame %d: tracks must not extrapolate, got %+v", tt.frame, got)
			}
		})
	}
}

func TestAnnotationAt_OutsideFirstKeyframe(t *testing.T) {
	// A track whose first keyframe marks the object outside contributes
	// nothing until its second keyframe is reached exactly.
	track := &Track{
		Keyframes: []Shape{
			{Frame: 0, Box: box(0, 0, 10, 10), Outside: true},
			{Frame: 10, Box: box(10, 10, 20, 20)},
		},
	}

	for f := 1; f <= 9; f++ {
		if got := track.AnnotationAt(f); got != nil {
			t.Errorf("frame %d: expected no annotation after outside keyframe, got %+v", f, got)
		}
	}

	got := track.AnnotationAt(10)
	if got == nil {
		t.Fatal("expected second keyframe at frame 10")
	}
	if got.Box != box(10, 10, 20, 20) || got.Outside {
		t.Errorf("expected second keyframe verbatim, got %+v", got)
	}
}

func TestAnnotationAt_OutsideKeyframeReturnedVerbatim(t *testing.T) {
	// A query exactly at an outside keyframe returns it; callers
	// filtering on Outside decide visibility. Covers the trailing
	// outside keyframe too.
	track := &Track{
		Keyframes: []Shape{
			keyframe(0, box(0, 0, 10, 10)),
			{Frame: 10, Box: box(10, 10, 20, 20), Outside: true},
		},
	}

	got := track.AnnotationAt(10)
	if got == nil {
		t.Fatal("expected trailing outside keyframe at frame 10")
	}
	if !got.Outside {
		t.Error("expected Outside preserved on exact keyframe hit")
	}
	if got.Box != box(10, 10, 20, 20) {
		t.Errorf("expected keyframe box verbatim, got %+v", got.Box)
	}
}

func TestAnnotationAt_DiscreteStateFromPrecedingKeyframe(t *testing.T) {
	var firstAttrs, secondAttrs Attributes
	firstAttrs.Set("quality", StringValue("good"))
	secondAttrs.Set("quality", StringValue("bad"))

	track := &Track{
		Keyframes: []Shape{
			{Frame: 0, Box: box(0, 0, 10, 10), Occluded: true, Attributes: firstAttrs},
			{Frame: 4, Box: box(4, 4, 14, 14), Occluded: false, Attributes: secondAttrs},
			{Frame: 10, Box: box(10, 10, 20, 20), Occluded: true, Attributes: firstAttrs},
		},
	}

	// Between keyframes 1 and 2: discrete state comes from keyframe at
	// frame 4, never blended with the one at frame 10.
	got := track.AnnotationAt(7)
	if got == nil {
		t.Fatal("expected annotation at frame 7")
	}
	if got.Occluded {
		t.Error("expected Occluded=false from nearest preceding keyframe")
	}
	v, ok := got.Attributes.Get("quality")
	if !ok || v.Str != "bad" {
		t.Errorf("expected attributes of nearest preceding keyframe, got %+v", got.Attributes)
	}

	// Between keyframes 0 and 1.
	got = track.AnnotationAt(2)
	if got == nil {
		t.Fatal("expected annotation at frame 2")
	}
	if !got.Occluded {
		t.Error("expected Occluded=true from first keyframe")
	}
	v, ok = got.Attributes.Get("quality")
	if !ok || v.Str != "good" {
		t.Errorf("expected first keyframe attributes, got %+v", got.Attributes)
	}
}

func TestAnnotationAt_SingleKeyframe(t *testing.T) {
	track := &Track{
		Keyframes: []Shape{keyframe(3, box(1, 2, 3, 4))},
	}

	if got := track.AnnotationAt(3); got == nil || got.Box != box(1, 2, 3, 4) {
		t.Errorf("expected the lone keyframe at its own frame, got %+v", got)
	}
	if got := track.AnnotationAt(2); got != nil {
		t.Errorf("expected nothing before the lone keyframe, got %+v", got)
	}
	if got := track.AnnotationAt(4); got != nil {
		t.Errorf("expected nothing after the lone keyframe, got %+v", got)
	}
}

func TestMaterialize_UnionAndOrder(t *testing.T) {
	shapes := []Shape{
		{Frame: 5, Label: "ball", Box: box(1, 1, 2, 2)},
		{Frame: 6, Label: "ball", Box: box(2, 2, 3, 3)},
	}
	tracks := []*Track{
		{
			ID:    0,
			Label: "person",
			Keyframes: []Shape{
				keyframe(0, box(0, 0, 10, 10)),
				keyframe(10, box(10, 10, 20, 20)),
			},
		},
	}

	got := Materialize(shapes, tracks, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(got))
	}
	if got[0].Label != "ball" || got[0].TrackID != -1 {
		t.Errorf("expected standalone shape first, got %+v", got[0])
	}
	if got[1].Label != "person" || got[1].TrackID != 0 || !got[1].Interpolated {
		t.Errorf("expected interpolated track annotation second, got %+v", got[1])
	}

	if got := Materialize(shapes, tracks, 20); len(got) != 0 {
		t.Errorf("expected empty set past all annotations, got %d", len(got))
	}
}

func TestFirstAnnotatedFrame(t *testing.T) {
	tests := []struct {
		name     string
		shapes   []Shape
		tracks   []*Track
		expected int
		ok       bool
	}{
		{
			name: "shape before track",
			shapes: []Shape{
				{Frame: 3, Label: "ball", Box: box(0, 0, 1, 1)},
			},
			tracks: []*Track{
				{Keyframes: []Shape{keyframe(7, box(0, 0, 1, 1))}},
			},
			expected: 3,
			ok:       true,
		},
		{
			name: "outside first keyframe still materializes at its frame",
			tracks: []*Track{
				{Keyframes: []Shape{
					{Frame: 2, Box: box(0, 0, 1, 1), Outside: true},
					keyframe(8, box(0, 0, 1, 1)),
				}},
			},
			expected: 2,
			ok:       true,
		},
		{
			name: "no annotations",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstAnnotatedFrame(tt.shapes, tt.tracks)
			if ok != tt.ok {
				t.Fatalf("expected ok=%t, got %t", tt.ok, ok)
			}
			if ok && got != tt.expected {
				t.Errorf("expected frame %d, got %d", tt.expected, got)
			}
		})
	}
}
