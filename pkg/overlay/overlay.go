// Package overlay renders materialized annotations onto frame images:
// one bounding box per annotation in the label's task color, with an
// optional caption. Occluded objects are drawn dashed; objects marked
// outside are not drawn at all.
package overlay

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/eyedl/cvat-reader/pkg/annotation"
)

// Theme defines overlay styling.
type Theme struct {
	BorderWidth   float64
	CaptionColor  color.Color
	FallbackColor color.Color // used when a label has no parseable color
	ShowCaptions  bool
}

// DefaultTheme returns the default overlay theme.
func DefaultTheme() Theme {
	return Theme{
		BorderWidth:   2,
		CaptionColor:  color.White,
		FallbackColor: color.RGBA{R: 250, G: 50, B: 83, A: 255},
		ShowCaptions:  true,
	}
}

// Renderer draws annotation overlays using the task's label colors.
type Renderer struct {
	theme  Theme
	colors map[string]color.Color
}

// New creates a renderer for the given label list.
func New(labels []annotation.Label, theme Theme) *Renderer {
	colors := make(map[string]color.Color, len(labels))
	for _, l := range labels {
		if c, ok := parseHexColor(l.Color); ok {
			colors[l.Name] = c
		}
	}
	return &Renderer{theme: theme, colors: colors}
}

// Render returns a copy of img with the annotations drawn on top. A nil
// image yields nil.
func (r *Renderer) Render(img image.Image, annotations []annotation.Annotation) image.Image {
	if img == nil {
		return nil
	}

	dc := gg.NewContextForImage(img)
	for i := range annotations {
		a := &annotations[i]
		if a.Outside {
			continue
		}
		r.drawBox(dc, a)
	}
	return dc.Image()
}

func (r *Renderer) drawBox(dc *gg.Context, a *annotation.Annotation) {
	c, ok := r.colors[a.Label]
	if !ok {
		c = r.theme.FallbackColor
	}

	dc.Push()
	dc.SetColor(c)
	dc.SetLineWidth(r.theme.BorderWidth)
	if a.Occluded {
		dc.SetDash(6, 4)
	}
	dc.DrawRectangle(
		float64(a.Box.X1),
		float64(a.Box.Y1),
		float64(a.Box.Width()),
		float64(a.Box.Height()),
	)
	dc.Stroke()
	dc.Pop()

	if r.theme.ShowCaptions {
		dc.Push()
		dc.SetColor(r.theme.CaptionColor)
		dc.DrawString(a.Label, float64(a.Box.X1), float64(a.Box.Y1)-4)
		dc.Pop()
	}
}

// Scale resizes a rendered frame to the given dimensions.
func Scale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// parseHexColor parses "#rgb" and "#rrggbb" colors.
func parseHexColor(s string) (color.RGBA, bool) {
	c := color.RGBA{A: 255}
	switch len(s) {
	case 7: // #rrggbb
		if s[0] != '#' {
			return c, false
		}
		rv, ok1 := hexByte(s[1], s[2])
		gv, ok2 := hexByte(s[3], s[4])
		bv, ok3 := hexByte(s[5], s[6])
		if !ok1 || !ok2 || !ok3 {
			return c, false
		}
		c.R, c.G, c.B = rv, gv, bv
		return c, true
	case 4: // #rgb
		if s[0] != '#' {
			return c, false
		}
		rv, ok1 := hexByte(s[1], s[1])
		gv, ok2 := hexByte(s[2], s[2])
		bv, ok3 := hexByte(s[3], s[3])
		if !ok1 || !ok2 || !ok3 {
			return c, false
		}
		c.R, c.G, c.B = rv, gv, bv
		return c, true
	}
	return c, false
}

func hexByte(hi, lo byte) (byte, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
