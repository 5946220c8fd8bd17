package render

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/reelpress/reelpress/internal/domain"
)

// Compositor owns the fixed-size destination surface. The context is
// reused across frames; only the active export may touch it.
type Compositor struct {
	dc *gg.Context
	w  int
	h  int
}

func NewCompositor(w, h int) *Compositor {
	return &Compositor{dc: gg.NewContext(w, h), w: w, h: h}
}

func (c *Compositor) Bounds() (int, int) {
	return c.w, c.h
}

// Composite clears the surface to opaque black, cover-fits the source
// frame into it and overlays the caption for the same instant. A nil
// frame leaves the black background (source not yet decoded).
func (c *Compositor) Composite(frame image.Image, t float64, clip *domain.Clip, tpl domain.Template, st domain.CustomCaptionStyle) (image.Image, error) {
	c.dc.SetRGB(0, 0, 0)
	c.dc.Clear()

	if frame != nil {
		b := frame.Bounds()
		drawW, _, offX, offY := CoverFit(b.Dx(), b.Dy(), c.w, c.h)
		scale := drawW / float64(b.Dx())

		c.dc.Push()
		c.dc.Translate(offX, offY)
		c.dc.Scale(scale, scale)
		c.dc.DrawImage(frame, 0, 0)
		c.dc.Pop()
	}

	if err := DrawCaption(c.dc, t, clip, tpl, st); err != nil {
		return c.dc.Image(), err
	}
	return c.dc.Image(), nil
}

// CoverFit computes the draw size and offsets that fill the destination
// completely, cropping the overflowing dimension and centering the other.
// Wider-than-destination sources cover the full height and crop left and
// right; everything else covers the full width and crops top and bottom.
func CoverFit(srcW, srcH, dstW, dstH int) (drawW, drawH, offX, offY float64) {
	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(dstW) / float64(dstH)

	if srcAspect > dstAspect {
		drawH = float64(dstH)
		drawW = drawH * srcAspect
		offX = (float64(dstW) - drawW) / 2
	} else {
		drawW = float64(dstW)
		drawH = drawW / srcAspect
		offY = (float64(dstH) - drawH) / 2
	}
	return drawW, drawH, offX, offY
}
