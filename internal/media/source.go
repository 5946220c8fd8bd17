package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enriquebris/goconcurrentqueue"
)

// maxQueuedFrames bounds the decode-ahead between the ffmpeg reader and
// the playback goroutine.
const maxQueuedFrames = 16

// Source is a detached playback element over a video file. Decoding and
// playback advance on their own media clock in background goroutines; the
// render loop samples CurrentTime and Frame instead of driving them.
type Source struct {
	path string
	log  *slog.Logger

	width    int
	height   int
	fps      float64
	duration float64

	mu        sync.Mutex
	frame     image.Image
	current   float64
	base      float64
	playing   bool
	paused    bool
	ended     bool
	decodeEOF bool

	queue      *goconcurrentqueue.FIFO
	cmd        *exec.Cmd
	stop       chan struct{}
	stopClosed bool
	done       chan struct{}
}

// OpenSource probes the video with ffprobe and returns a source ready to
// be seeked and played.
func OpenSource(path string, log *slog.Logger) (*Source, error) {
	w, h, fps, dur, err := probe(path)
	if err != nil {
		return nil, err
	}
	log.Debug("source opened", "path", path, "width", w, "height", h, "fps", fps, "duration", dur)
	return &Source{
		path:     path,
		log:      log,
		width:    w,
		height:   h,
		fps:      fps,
		duration: dur,
	}, nil
}

func (s *Source) Bounds() (int, int) { return s.width, s.height }

func (s *Source) Duration() float64 { return s.duration }

// Seek positions the media clock. Only valid while not playing.
func (s *Source) Seek(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return fmt.Errorf("seek at %.3f: source is playing", t)
	}
	s.base = t
	s.current = t
	s.ended = false
	s.paused = false
	return nil
}

// Play starts ffmpeg decoding from the seek position and the playback
// goroutine that advances the media clock one frame interval per decoded
// frame.
func (s *Source) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return nil
	}

	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", s.base),
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	var errs bytes.Buffer
	cmd.Stderr = &errs
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("decoder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start decoder: %w", err)
	}

	s.cmd = cmd
	s.queue = goconcurrentqueue.NewFIFO()
	s.stop = make(chan struct{})
	s.stopClosed = false
	s.done = make(chan struct{})
	s.playing = true
	s.paused = false
	s.decodeEOF = false

	go s.decodeLoop(stdout, &errs)
	go s.playLoop()
	return nil
}

func (s *Source) decodeLoop(r io.Reader, errs *bytes.Buffer) {
	frameSize := s.width * s.height * 4
	interval := time.Duration(float64(time.Second) / s.fps)

	for {
		select {
		case <-s.stop:
			s.cmd.Wait()
			return
		default:
		}

		for s.queue.GetLen() >= maxQueuedFrames {
			select {
			case <-s.stop:
				s.cmd.Wait()
				return
			case <-time.After(interval):
			}
		}

		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				s.log.Debug("decoder stopped", "err", err, "ffmpeg", strings.TrimSpace(errs.String()))
			}
			s.mu.Lock()
			s.decodeEOF = true
			s.mu.Unlock()
			s.cmd.Wait()
			return
		}

		s.queue.Enqueue(&image.RGBA{
			Pix:    buf,
			Stride: s.width * 4,
			Rect:   image.Rect(0, 0, s.width, s.height),
		})
	}
}

// playLoop advances current time by exactly one frame interval per frame
// consumed. When the queue starves mid-stream the clock holds rather than
// skipping, so sampled positions always match a decoded frame.
func (s *Source) playLoop() {
	defer close(s.done)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		v, err := s.queue.Dequeue()
		if err != nil {
			s.mu.Lock()
			eof := s.decodeEOF
			if eof {
				s.ended = true
				s.playing = false
			}
			s.mu.Unlock()
			if eof {
				return
			}
			continue
		}

		s.mu.Lock()
		s.frame = v.(image.Image)
		s.current += 1 / s.fps
		s.mu.Unlock()
	}
}

// Pause stops playback and the decoder. It is the termination signal the
// export loop observes, so cancelling an export routes through here. Safe
// to call from any goroutine, repeatedly.
func (s *Source) Pause() {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.paused = true
	if !s.stopClosed {
		close(s.stop)
		s.stopClosed = true
	}
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
	if done != nil {
		<-done
	}
}

func (s *Source) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Source) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Source) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Frame returns the most recently decoded frame, nil before the first one.
func (s *Source) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *Source) Close() error {
	s.Pause()
	return nil
}

func probe(path string) (w, h int, fps, duration float64, err error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return parseProbe(string(out))
}

// parseProbe parses ffprobe csv output: a stream line
// "width,height,num/den" and a format line holding the duration.
func parseProbe(out string) (w, h int, fps, duration float64, err error) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		switch len(fields) {
		case 3:
			w, err = strconv.Atoi(fields[0])
			if err != nil {
				return 0, 0, 0, 0, fmt.Errorf("probe width %q: %w", fields[0], err)
			}
			h, err = strconv.Atoi(fields[1])
			if err != nil {
				return 0, 0, 0, 0, fmt.Errorf("probe height %q: %w", fields[1], err)
			}
			fps, err = parseRate(fields[2])
			if err != nil {
				return 0, 0, 0, 0, err
			}
		case 1:
			if fields[0] == "" {
				continue
			}
			duration, err = strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return 0, 0, 0, 0, fmt.Errorf("probe duration %q: %w", fields[0], err)
			}
		}
	}
	if w == 0 || h == 0 || fps == 0 {
		return 0, 0, 0, 0, fmt.Errorf("probe output incomplete: %q", out)
	}
	return w, h, fps, duration, nil
}

func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("probe frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("probe frame rate %q: bad denominator", s)
	}
	return n / d, nil
}
