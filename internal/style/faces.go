package style

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

type faceKey struct {
	family Family
	weight string
	italic bool
	size   float64
}

var (
	faceMu    sync.Mutex
	faceCache = map[faceKey]font.Face{}
	fontCache = map[string]*sfnt.Font{}
)

// FaceFor resolves a concrete font face for a family/weight/italic/size
// combination. Faces are cached for the process lifetime; the renderer
// calls this once per drawn frame.
func FaceFor(family Family, weight string, italic bool, size float64) (font.Face, error) {
	faceMu.Lock()
	defer faceMu.Unlock()

	key := faceKey{family, weight, italic, size}
	if f, ok := faceCache[key]; ok {
		return f, nil
	}

	ttf := ttfFor(family, weight, italic)
	fnt, ok := fontCache[ttf.name]
	if !ok {
		parsed, err := opentype.Parse(ttf.data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", ttf.name, err)
		}
		fontCache[ttf.name] = parsed
		fnt = parsed
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %s@%.0f: %w", ttf.name, size, err)
	}
	faceCache[key] = face
	return face, nil
}

type ttfSource struct {
	name string
	data []byte
}

func ttfFor(family Family, weight string, italic bool) ttfSource {
	heavy := weight >= "600" && len(weight) == 3

	switch family {
	case FamilyDisplay:
		// single display cut; weight and italic are absorbed by the face
		return ttfSource{"gosmallcaps", gosmallcaps.TTF}
	case FamilyMono:
		if heavy {
			return ttfSource{"gomonobold", gomonobold.TTF}
		}
		return ttfSource{"gomono", gomono.TTF}
	default:
		switch {
		case italic && heavy:
			return ttfSource{"gobolditalic", gobolditalic.TTF}
		case italic:
			return ttfSource{"goitalic", goitalic.TTF}
		case heavy:
			return ttfSource{"gobold", gobold.TTF}
		case weight == "500":
			return ttfSource{"gomedium", gomedium.TTF}
		default:
			return ttfSource{"goregular", goregular.TTF}
		}
	}
}
