package domain

import (
	"sync"
)

// Session is the transient per-run state shared between the dialog and the
// export pipeline: selected clip, chosen template, style overrides, export
// progress and the most recent output artifact. All access goes through
// the mutex so mid-export style edits and progress reads are safe.
type Session struct {
	mu       sync.RWMutex
	clip     *Clip
	template Template
	style    CustomCaptionStyle

	exporting bool
	progress  float64
	artifact  *Artifact
}

func NewSession() *Session {
	return &Session{
		template: TemplateModern,
		style:    DefaultCaptionStyle(),
	}
}

// SelectClip switches the active clip and invalidates the previous
// export's artifact and progress.
func (s *Session) SelectClip(clip *Clip) {
	s.mu.Lock()
	s.clip = clip
	s.artifact = nil
	s.progress = 0
	s.mu.Unlock()
}

func (s *Session) Clip() *Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clip
}

func (s *Session) SetTemplate(t Template) {
	s.mu.Lock()
	s.template = t
	s.mu.Unlock()
}

func (s *Session) Template() Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// UpdateStyle applies fn to the style under the lock. Frames composited
// after the update pick up the new values; already-encoded frames do not.
func (s *Session) UpdateStyle(fn func(*CustomCaptionStyle)) {
	s.mu.Lock()
	fn(&s.style)
	s.mu.Unlock()
}

// StyleSnapshot returns a copy of the current style for one frame.
func (s *Session) StyleSnapshot() CustomCaptionStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

func (s *Session) SetExporting(v bool) {
	s.mu.Lock()
	s.exporting = v
	s.mu.Unlock()
}

func (s *Session) Exporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exporting
}

func (s *Session) SetProgress(p float64) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

func (s *Session) SetArtifact(a *Artifact) {
	s.mu.Lock()
	s.artifact = a
	s.mu.Unlock()
}

func (s *Session) Artifact() *Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact
}
