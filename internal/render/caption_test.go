package render

import (
	"testing"

	"github.com/fogleman/gg"

	"github.com/reelpress/reelpress/internal/domain"
)

func blackContext(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	return dc
}

func TestDrawCaptionTemplates(t *testing.T) {
	clip := &domain.Clip{
		ID:    "c",
		Start: 0,
		End:   10,
		Captions: []domain.Caption{
			{Text: "go go go", Start: 1, End: 4},
		},
	}
	st := domain.DefaultCaptionStyle()

	templates := []domain.Template{
		domain.TemplateModern,
		domain.TemplateNeon,
		domain.TemplateBold,
		domain.TemplateMinimal,
		domain.TemplateGame,
	}
	for _, tpl := range templates {
		t.Run(string(tpl), func(t *testing.T) {
			dc := blackContext(216, 384)
			if err := DrawCaption(dc, 2, clip, tpl, st); err != nil {
				t.Fatalf("DrawCaption: %v", err)
			}
			if countNonBlack(dc.Image()) == 0 {
				t.Error("expected drawn pixels for an active caption")
			}
		})
	}
}

func TestDrawCaptionInactive(t *testing.T) {
	clip := &domain.Clip{
		ID:    "c",
		Start: 0,
		End:   10,
		Captions: []domain.Caption{
			{Text: "early", Start: 0, End: 1},
		},
	}
	dc := blackContext(216, 384)
	if err := DrawCaption(dc, 5, clip, domain.TemplateModern, domain.DefaultCaptionStyle()); err != nil {
		t.Fatalf("DrawCaption: %v", err)
	}
	if n := countNonBlack(dc.Image()); n != 0 {
		t.Errorf("surface has %d non-black pixels, want untouched frame", n)
	}
}

func TestDrawCaptionOpacityZeroSkipsBox(t *testing.T) {
	clip := &domain.Clip{
		ID:    "c",
		Start: 0,
		End:   10,
		Captions: []domain.Caption{
			{Text: "x", Start: 0, End: 10},
		},
	}
	st := domain.CustomCaptionStyle{
		TextColor:       "#FFFFFF",
		BackgroundColor: "#0000FF",
		BgOpacity:       0,
		FontWeight:      "700",
	}

	for _, tpl := range []domain.Template{domain.TemplateNeon, domain.TemplateGame} {
		t.Run(string(tpl), func(t *testing.T) {
			dc := blackContext(216, 384)
			if err := DrawCaption(dc, 5, clip, tpl, st); err != nil {
				t.Fatalf("DrawCaption: %v", err)
			}
			im := dc.Image()
			b := im.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					r, g, bch, _ := im.At(x, y).RGBA()
					if bch > r && bch > g && bch > 0x4000 {
						t.Fatalf("found dominant blue pixel at %d,%d; background box must be skipped", x, y)
					}
				}
			}
			if countNonBlack(im) == 0 {
				t.Error("text must still be drawn without the box")
			}
		})
	}
}
