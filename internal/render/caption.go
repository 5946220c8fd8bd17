package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/reelpress/reelpress/internal/domain"
	"github.com/reelpress/reelpress/internal/style"
)

// Template-intrinsic colors; not user-overridable.
var (
	neonGlow    = color.NRGBA{255, 0, 255, 90}
	neonOutline = color.NRGBA{139, 0, 139, 255}
	gameStroke  = color.NRGBA{0, 0, 0, 255}
	shadowHalf  = color.NRGBA{0, 0, 0, 127}
)

// DrawCaption overlays the caption active at absolute time t onto dc.
// No active caption is not an error; the frame is left untouched.
func DrawCaption(dc *gg.Context, t float64, clip *domain.Clip, tpl domain.Template, st domain.CustomCaptionStyle) error {
	active, ok := clip.ActiveCaption(t)
	if !ok {
		return nil
	}

	face, err := style.FaceFor(style.FontFamilyFor(tpl), st.FontWeight, style.Italic(tpl), style.FontSizeFor(tpl))
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	fg := style.HexToRGBA(st.TextColor, 100)
	bg := style.HexToRGBA(st.BackgroundColor, st.BgOpacity)

	switch tpl {
	case domain.TemplateNeon:
		drawNeon(dc, active.Text, fg, bg, st.BgOpacity)
	case domain.TemplateBold:
		drawBold(dc, active.Text, fg, bg)
	case domain.TemplateMinimal:
		drawMinimal(dc, active.Text, fg, bg)
	case domain.TemplateGame:
		drawGame(dc, active.Text, fg, bg, st.BgOpacity)
	default:
		drawModern(dc, active.Text, fg, bg)
	}
	return nil
}

// Modern: rounded background box at 75% height, drop-shadowed centered fill.
func drawModern(dc *gg.Context, text string, fg, bg color.Color) {
	w := float64(dc.Width())
	cx := w / 2
	y := float64(dc.Height()) * 0.75
	tw, th := dc.MeasureString(text)

	dc.SetColor(bg)
	dc.DrawRoundedRectangle(cx-tw/2-30, y-th/2-15, tw+60, th+30, 12)
	dc.Fill()

	dc.SetColor(shadowHalf)
	dc.DrawStringAnchored(text, cx+3, y+3, 0.5, 0.5)
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

// Neon: uppercased text at 70% height, magenta glow, user-color fill,
// darker magenta outline; background box only when opacity > 0.
func drawNeon(dc *gg.Context, text string, fg, bg color.Color, bgOpacity int) {
	text = strings.ToUpper(text)
	w := float64(dc.Width())
	cx := w / 2
	y := float64(dc.Height()) * 0.70
	tw, th := dc.MeasureString(text)

	if bgOpacity > 0 {
		dc.SetColor(bg)
		dc.DrawRectangle(cx-tw/2-25, y-th/2-12, tw+50, th+24)
		dc.Fill()
	}

	ringString(dc, text, cx, y, 6, neonGlow)
	ringString(dc, text, cx, y, 3, neonGlow)
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
	ringString(dc, text, cx, y, 2, neonOutline)
}

// Bold: block rotated -2 degrees about its center at 30% height, shadowed
// background box with wide padding, uppercased fill on top.
func drawBold(dc *gg.Context, text string, fg, bg color.Color) {
	text = strings.ToUpper(text)
	w := float64(dc.Width())
	cx := w / 2
	y := float64(dc.Height()) * 0.30
	tw, th := dc.MeasureString(text)

	dc.Push()
	dc.RotateAbout(gg.Radians(-2), cx, y)

	dc.SetColor(shadowHalf)
	dc.DrawRectangle(cx-tw/2-60+6, y-th/2-30+6, tw+120, th+60)
	dc.Fill()
	dc.SetColor(bg)
	dc.DrawRectangle(cx-tw/2-60, y-th/2-30, tw+120, th+60)
	dc.Fill()

	dc.SetColor(fg)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
	dc.Pop()
}

// Minimal: modest box at 85% height, plain centered fill.
func drawMinimal(dc *gg.Context, text string, fg, bg color.Color) {
	w := float64(dc.Width())
	cx := w / 2
	y := float64(dc.Height()) * 0.85
	tw, th := dc.MeasureString(text)

	dc.SetColor(bg)
	dc.DrawRectangle(cx-tw/2-40, y-th/2-20, tw+80, th+40)
	dc.Fill()

	dc.SetColor(fg)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

// Game: sticker look at 80% height: thick black stroke under the fill,
// then a (4,4)-offset fill for the drop shadow, then the main fill.
func drawGame(dc *gg.Context, text string, fg, bg color.Color, bgOpacity int) {
	text = strings.ToUpper(text)
	w := float64(dc.Width())
	cx := w / 2
	y := float64(dc.Height()) * 0.80
	tw, th := dc.MeasureString(text)

	if bgOpacity > 0 {
		dc.SetColor(bg)
		dc.DrawRectangle(cx-tw/2-25, y-th/2-12, tw+50, th+24)
		dc.Fill()
	}

	ringString(dc, text, cx, y, 8, gameStroke)
	ringString(dc, text, cx, y, 4, gameStroke)
	dc.SetColor(shadowHalf)
	dc.DrawStringAnchored(text, cx+4, y+4, 0.5, 0.5)
	dc.SetColor(fg)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

// ringString emulates a text stroke/glow by stamping the string around a
// circle of the given radius. gg has no shadow or text-stroke primitive,
// so pass count is fixed to keep output deterministic.
func ringString(dc *gg.Context, s string, x, y, radius float64, c color.Color) {
	dc.SetColor(c)
	const passes = 16
	for i := 0; i < passes; i++ {
		a := 2 * math.Pi * float64(i) / passes
		dc.DrawStringAnchored(s, x+radius*math.Cos(a), y+radius*math.Sin(a), 0.5, 0.5)
	}
}
