package share

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelpress/reelpress/internal/domain"
)

// ErrNoArtifact means no export has completed since the current clip was
// selected. Callers must treat this as an expected condition.
var ErrNoArtifact = errors.New("no export artifact available")

// Sharer offers the most recent export artifact for external sharing by
// staging it in a share directory.
type Sharer struct {
	dir string
}

func NewSharer(dir string) *Sharer {
	return &Sharer{dir: dir}
}

// Offer stages the artifact and returns its shareable path. A nil
// artifact yields ErrNoArtifact.
func (s *Sharer) Offer(a *domain.Artifact) (string, error) {
	if a == nil {
		return "", ErrNoArtifact
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create share dir: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("stage artifact: %w", err)
	}
	return path, nil
}
