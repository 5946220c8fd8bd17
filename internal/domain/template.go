package domain

// Template identifies one of the fixed caption style algorithms.
type Template string

const (
	TemplateModern  Template = "modern"
	TemplateNeon    Template = "neon"
	TemplateBold    Template = "bold"
	TemplateMinimal Template = "minimal"
	TemplateGame    Template = "game"
)

// TemplateInfo carries cosmetic metadata used only by the UI listing;
// the renderer keys off the Template id alone.
type TemplateInfo struct {
	ID           Template
	Name         string
	PreviewColor string
}

func Templates() []TemplateInfo {
	return []TemplateInfo{
		{TemplateModern, "Modern", "#7C3AED"},
		{TemplateNeon, "Neon Glow", "#FF00FF"},
		{TemplateBold, "Bold Impact", "#F59E0B"},
		{TemplateMinimal, "Minimal", "#9CA3AF"},
		{TemplateGame, "Game Sticker", "#22C55E"},
	}
}

// KnownTemplate reports whether id belongs to the closed enumeration.
func KnownTemplate(id Template) bool {
	switch id {
	case TemplateModern, TemplateNeon, TemplateBold, TemplateMinimal, TemplateGame:
		return true
	}
	return false
}

// FontWeights is the closed set of weights a CustomCaptionStyle may carry.
var FontWeights = []string{"400", "500", "600", "700", "800", "900"}

// CustomCaptionStyle holds the user-tunable overrides layered on top of a
// template's hardcoded structural choices. Colors are 6-digit hex strings;
// malformed values are not validated and degrade at draw time.
type CustomCaptionStyle struct {
	TextColor       string
	BackgroundColor string
	BgOpacity       int // 0..100
	FontWeight      string
}

func DefaultCaptionStyle() CustomCaptionStyle {
	return CustomCaptionStyle{
		TextColor:       "#FFFFFF",
		BackgroundColor: "#000000",
		BgOpacity:       70,
		FontWeight:      "700",
	}
}

// Artifact is a completed export output held in memory until the next
// clip selection or export invalidates it.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}
