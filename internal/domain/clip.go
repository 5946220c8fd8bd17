package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Caption is a single subtitle entry. Start and End are seconds relative
// to the owning clip's Start, inclusive on both ends.
type Caption struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Clip is a bounded sub-interval of the source video with its own caption
// track. Start and End are absolute seconds within the source. Clips are
// produced upstream and are read-only to the export pipeline.
type Clip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       float64   `json:"startTime"`
	End         float64   `json:"endTime"`
	ViralScore  int       `json:"viralScore"`
	Captions    []Caption `json:"captions"`
}

func (c *Clip) Duration() float64 {
	return c.End - c.Start
}

// ActiveCaption returns the caption active at absolute time t. Containment
// is inclusive on both bounds of the relative window; when windows overlap
// the first match in sequence order wins.
func (c *Clip) ActiveCaption(t float64) (Caption, bool) {
	rel := t - c.Start
	for _, cap := range c.Captions {
		if rel >= cap.Start && rel <= cap.End {
			return cap, true
		}
	}
	return Caption{}, false
}

// LoadClips reads a clip manifest (JSON array) from disk. Validation is
// limited to the time-ordering invariant; caption contents are owned by
// the upstream producer.
func LoadClips(path string) ([]Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clip manifest: %w", err)
	}
	var clips []Clip
	if err := json.Unmarshal(data, &clips); err != nil {
		return nil, fmt.Errorf("parse clip manifest: %w", err)
	}
	for i := range clips {
		if clips[i].Start >= clips[i].End {
			return nil, fmt.Errorf("clip %q: startTime %.3f must be before endTime %.3f",
				clips[i].ID, clips[i].Start, clips[i].End)
		}
	}
	return clips, nil
}
