package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/reelpress/reelpress/internal/domain"
)

func TestCoverFit(t *testing.T) {
	t.Run("16:9 source covers height and crops sides", func(t *testing.T) {
		drawW, drawH, offX, offY := CoverFit(1920, 1080, 1080, 1920)
		if drawH != 1920 {
			t.Errorf("drawH = %v, want 1920", drawH)
		}
		if drawW <= 1080 {
			t.Errorf("drawW = %v, want > 1080", drawW)
		}
		if offY != 0 {
			t.Errorf("offY = %v, want 0", offY)
		}
		// centered: equal overflow on both sides
		if math.Abs(offX-(1080-drawW)/2) > 1e-9 {
			t.Errorf("offX = %v, want %v", offX, (1080-drawW)/2)
		}
	})

	t.Run("matching 9:16 source maps exactly", func(t *testing.T) {
		drawW, drawH, offX, offY := CoverFit(1080, 1920, 1080, 1920)
		if drawW != 1080 || drawH != 1920 || offX != 0 || offY != 0 {
			t.Errorf("got %v,%v,%v,%v, want exact fit with zero offsets", drawW, drawH, offX, offY)
		}
	})

	t.Run("tall source covers width and crops top and bottom", func(t *testing.T) {
		drawW, drawH, offX, offY := CoverFit(1080, 2400, 1080, 1920)
		if drawW != 1080 {
			t.Errorf("drawW = %v, want 1080", drawW)
		}
		if drawH <= 1920 {
			t.Errorf("drawH = %v, want > 1920", drawH)
		}
		if offX != 0 {
			t.Errorf("offX = %v, want 0", offX)
		}
		if offY >= 0 {
			t.Errorf("offY = %v, want negative (cropped)", offY)
		}
	})
}

func TestComposite(t *testing.T) {
	clip := &domain.Clip{
		ID:    "c",
		Start: 10,
		End:   20,
		Captions: []domain.Caption{
			{Text: "HELLO", Start: 0, End: 5},
		},
	}
	st := domain.CustomCaptionStyle{
		TextColor:       "#FFFFFF",
		BackgroundColor: "#FF0000",
		BgOpacity:       100,
		FontWeight:      "700",
	}

	t.Run("nil frame yields black background", func(t *testing.T) {
		c := NewCompositor(108, 192)
		im, err := c.Composite(nil, 19, clip, domain.TemplateMinimal, st) // no caption at rel 9
		if err != nil {
			t.Fatalf("Composite: %v", err)
		}
		for _, p := range []image.Point{{0, 0}, {107, 0}, {54, 96}, {107, 191}} {
			r, g, b, _ := im.At(p.X, p.Y).RGBA()
			if r != 0 || g != 0 || b != 0 {
				t.Errorf("pixel %v = %d,%d,%d, want black", p, r, g, b)
			}
		}
	})

	t.Run("active caption draws over background", func(t *testing.T) {
		c := NewCompositor(108, 192)
		im, err := c.Composite(nil, 12, clip, domain.TemplateMinimal, st) // rel 2, caption active
		if err != nil {
			t.Fatalf("Composite: %v", err)
		}
		if countNonBlack(im) == 0 {
			t.Error("expected caption pixels on the surface")
		}
	})

	t.Run("frame is cover-drawn", func(t *testing.T) {
		c := NewCompositor(108, 192)
		frame := image.NewRGBA(image.Rect(0, 0, 192, 108))
		for i := range frame.Pix {
			frame.Pix[i] = 0xff // solid white, opaque
		}
		im, err := c.Composite(frame, 19, clip, domain.TemplateMinimal, st)
		if err != nil {
			t.Fatalf("Composite: %v", err)
		}
		// a wide source must cover the full destination height
		for _, p := range []image.Point{{54, 0}, {54, 96}, {54, 191}} {
			r, _, _, _ := im.At(p.X, p.Y).RGBA()
			if r == 0 {
				t.Errorf("pixel %v is black, want frame content", p)
			}
		}
	})
}

func countNonBlack(im image.Image) int {
	b := im.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(im.At(x, y)).(color.NRGBA)
			if c.R != 0 || c.G != 0 || c.B != 0 {
				n++
			}
		}
	}
	return n
}
