package share

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reelpress/reelpress/internal/domain"
)

func TestOfferNoArtifact(t *testing.T) {
	s := NewSharer(t.TempDir())
	if _, err := s.Offer(nil); !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("err = %v, want ErrNoArtifact", err)
	}
}

func TestOfferStagesArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "share")
	s := NewSharer(dir)

	a := &domain.Artifact{
		Name: "reelpress_clip.mp4",
		MIME: "video/mp4",
		Data: []byte("mp4 bytes"),
	}
	path, err := s.Offer(a)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("staged outside share dir: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "mp4 bytes" {
		t.Errorf("staged content = %q", data)
	}
}

func TestOfferStripsPathComponents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "share")
	s := NewSharer(dir)

	a := &domain.Artifact{Name: "../escape.mp4", Data: []byte("x")}
	path, err := s.Offer(a)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact escaped the share dir: %s", path)
	}
}
