package export

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/reelpress/reelpress/internal/domain"
	"github.com/reelpress/reelpress/internal/utils"
)

const (
	OutputWidth  = 1080
	OutputHeight = 1920
	OutputFPS    = 30

	filePrefix = "reelpress"
)

var (
	// ErrExportBlocked is the expected, non-exceptional gate rejection.
	ErrExportBlocked = errors.New("export blocked by usage gate")
	// ErrExportActive rejects a second export while one is running.
	ErrExportActive = errors.New("an export is already in progress")
	// ErrNoClip means no clip has been selected in the session.
	ErrNoClip = errors.New("no clip selected")
)

// State is the pipeline's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateGated
	StateInitializing
	StateRecording
	StateFinalizing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGated:
		return "gated"
	case StateInitializing:
		return "initializing"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// VideoSource is a detached playback element. Playback advances on its
// own media clock; the pipeline only samples it.
type VideoSource interface {
	Play() error
	Pause()
	Seek(t float64) error
	CurrentTime() float64
	Paused() bool
	Ended() bool
	Frame() image.Image
	Close() error
}

// AudioGraph feeds the live output device and captures the track that is
// muxed into the artifact.
type AudioGraph interface {
	Start() error
	Stop()
	CaptureWAV() ([]byte, error)
}

// FrameSink composites one source frame plus the caption overlay for an
// instant into the fixed output surface.
type FrameSink interface {
	Bounds() (int, int)
	Composite(frame image.Image, t float64, clip *domain.Clip, tpl domain.Template, st domain.CustomCaptionStyle) (image.Image, error)
}

// UsageGate is consulted once before any resource allocation.
type UsageGate interface {
	AllowExport() bool
}

// UsageCounter is notified exactly once after a successful export.
type UsageCounter interface {
	ExportCompleted()
}

// Config wires a Pipeline. Factories construct the per-export resources
// so tests can inject fakes and no ambient global state is consulted.
type Config struct {
	Log     *slog.Logger
	Session *domain.Session
	Sink    FrameSink
	Gate    UsageGate
	Counter UsageCounter

	NewSource  func(path string) (VideoSource, error)
	NewAudio   func(path string, start, end float64) AudioGraph
	NewEncoder func(width, height, fps int) Encoder
	Scheduler  Scheduler

	OutDir string
	FPS    int

	// OnState observes transitions; used by tests, may be nil.
	OnState func(State)
}

// Pipeline owns the render loop, the encoder and the per-export
// resources. One export at a time by construction.
type Pipeline struct {
	cfg Config
	log *slog.Logger

	mu     sync.Mutex
	state  State
	source VideoSource
}

func New(cfg Config) *Pipeline {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = OutputFPS
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TickerScheduler{Interval: utils.Fps(cfg.FPS)}
	}
	return &Pipeline{cfg: cfg, log: cfg.Log}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel pauses the detached source; the render loop observes the pause
// as its termination condition and finalizes with the frames encoded so
// far. No-op outside Recording.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	src := p.source
	recording := p.state == StateRecording
	p.mu.Unlock()
	if recording && src != nil {
		src.Pause()
	}
}

// Export runs the full state machine for the session's selected clip and
// returns the finished artifact. Blocking; callers run it off the dialog
// goroutine and watch session progress.
func (p *Pipeline) Export(videoPath string) (*domain.Artifact, error) {
	session := p.cfg.Session
	clip := session.Clip()

	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, ErrExportActive
	}
	if clip == nil {
		p.mu.Unlock()
		return nil, ErrNoClip
	}
	if !p.cfg.Gate.AllowExport() {
		// halt with no side effects; state never leaves Idle
		p.mu.Unlock()
		return nil, ErrExportBlocked
	}
	p.setStateLocked(StateGated)
	p.mu.Unlock()

	session.SetExporting(true)
	session.SetProgress(0)
	defer session.SetExporting(false)

	artifact, err := p.run(videoPath, clip)
	if err != nil {
		session.SetProgress(0)
		p.setState(StateFailed)
		p.setState(StateIdle)
		return nil, err
	}
	p.setState(StateIdle)
	return artifact, nil
}

func (p *Pipeline) run(videoPath string, clip *domain.Clip) (*domain.Artifact, error) {
	session := p.cfg.Session
	p.setState(StateInitializing)

	src, err := p.cfg.NewSource(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		src.Close()
		p.mu.Lock()
		p.source = nil
		p.mu.Unlock()
	}()

	if err := src.Seek(clip.Start); err != nil {
		return nil, fmt.Errorf("seek to clip start: %w", err)
	}

	audio := p.cfg.NewAudio(videoPath, clip.Start, clip.End)
	if err := audio.Start(); err != nil {
		// audio graph failure is fatal before recording starts
		return nil, fmt.Errorf("build audio graph: %w", err)
	}
	defer audio.Stop()

	w, h := p.cfg.Sink.Bounds()
	enc := p.cfg.NewEncoder(w, h, p.cfg.FPS)
	if err := enc.Start(); err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}

	if err := src.Play(); err != nil {
		if _, serr := enc.Stop(nil); serr != nil {
			p.log.Debug("discard encoder", "err", serr)
		}
		return nil, fmt.Errorf("start playback: %w", err)
	}

	p.mu.Lock()
	p.source = src
	p.setStateLocked(StateRecording)
	p.mu.Unlock()

	p.log.Info("recording", "clip", clip.ID, "start", clip.Start, "end", clip.End)

	lastProgress := 0.0
	p.cfg.Scheduler.Run(func() bool {
		now := src.CurrentTime()
		if src.Paused() || src.Ended() || now >= clip.End {
			return false
		}

		progress := (now - clip.Start) / (clip.End - clip.Start) * 100
		if progress > 100 {
			progress = 100
		}
		if progress > lastProgress {
			lastProgress = progress
		}
		session.SetProgress(lastProgress)

		im, cerr := p.cfg.Sink.Composite(src.Frame(), now, clip, session.Template(), session.StyleSnapshot())
		if cerr != nil {
			p.log.Warn("composite", "err", cerr)
		}
		if perr := enc.Push(im); perr != nil {
			p.log.Error("encoder rejected frame", "err", perr)
			return false
		}
		return true
	})

	p.setState(StateFinalizing)
	src.Pause()
	audio.Stop()

	wav, werr := audio.CaptureWAV()
	if werr != nil {
		p.log.Warn("audio capture unavailable", "err", werr)
		wav = nil
	}

	data, err := enc.Stop(wav)
	if err != nil {
		return nil, fmt.Errorf("finalize artifact: %w", err)
	}

	name := fmt.Sprintf("%s_%s.mp4", filePrefix, utils.SanitizeTitle(clip.Title))
	artifact := &domain.Artifact{Name: name, MIME: "video/mp4", Data: data}
	session.SetArtifact(artifact)

	if p.cfg.OutDir != "" {
		path := filepath.Join(p.cfg.OutDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("save artifact: %w", err)
		}
		p.log.Info("artifact saved", "path", path, "bytes", len(data))
	}

	p.cfg.Counter.ExportCompleted()
	session.SetProgress(0)
	return artifact, nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.setStateLocked(s)
	p.mu.Unlock()
}

func (p *Pipeline) setStateLocked(s State) {
	p.state = s
	p.log.Debug("pipeline state", "state", s.String())
	if p.cfg.OnState != nil {
		p.cfg.OnState(s)
	}
}
