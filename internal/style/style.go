package style

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/reelpress/reelpress/internal/domain"
)

// Family is one of the font family classes the templates draw with.
type Family int

const (
	FamilySans Family = iota
	FamilyDisplay
	FamilyMono
)

// HexToRGBA turns a 6-hex-digit color (leading '#' optional) and an alpha
// percentage into a drawing color. Input is not validated: malformed or
// short hex degrades to zeroed channels, callers own supplying
// well-formed values.
func HexToRGBA(hex string, alphaPercent int) color.NRGBA {
	h := strings.TrimPrefix(hex, "#")
	return color.NRGBA{
		R: hexChannel(h, 0),
		G: hexChannel(h, 2),
		B: hexChannel(h, 4),
		A: uint8(255 * alphaPercent / 100),
	}
}

func hexChannel(h string, off int) uint8 {
	if off+2 > len(h) {
		return 0
	}
	v, err := strconv.ParseUint(h[off:off+2], 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// FontFamilyFor maps a template to its family class. Total over the closed
// enumeration; unrecognized ids fall back to the sans default.
func FontFamilyFor(t domain.Template) Family {
	switch t {
	case domain.TemplateBold:
		return FamilyDisplay
	case domain.TemplateMinimal:
		return FamilyMono
	default:
		return FamilySans
	}
}

// FontSizeFor returns the template-intrinsic point size in pixels.
func FontSizeFor(t domain.Template) float64 {
	switch t {
	case domain.TemplateModern:
		return 60
	case domain.TemplateMinimal:
		return 45
	case domain.TemplateBold:
		return 80
	default:
		// neon and game share a size
		return 70
	}
}

// Italic reports whether the template renders its text italicized.
func Italic(t domain.Template) bool {
	return t == domain.TemplateNeon
}
