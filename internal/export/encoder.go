package export

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gen2brain/x264-go"
)

// Encoder consumes composited frames and produces the final container
// blob. Stop receives the captured audio track (WAV, may be nil) so the
// implementation can mux a single combined audio+video artifact.
type Encoder interface {
	Start() error
	Push(im image.Image) error
	Stop(audioWAV []byte) ([]byte, error)
}

// X264Encoder encodes frames into an in-memory H.264 elementary stream
// and muxes it with the audio into an MP4 via ffmpeg.
type X264Encoder struct {
	width  int
	height int
	fps    int
	log    *slog.Logger

	buf bytes.Buffer
	enc *x264.Encoder
}

func NewX264Encoder(width, height, fps int, log *slog.Logger) *X264Encoder {
	return &X264Encoder{width: width, height: height, fps: fps, log: log}
}

func (e *X264Encoder) Start() error {
	opts := &x264.Options{
		Width:     e.width,
		Height:    e.height,
		FrameRate: e.fps,
		Tune:      "zerolatency",
		Preset:    "veryfast",
		Profile:   "baseline",
		LogLevel:  x264.LogError,
	}
	enc, err := x264.NewEncoder(&e.buf, opts)
	if err != nil {
		return fmt.Errorf("create h264 encoder: %w", err)
	}
	e.enc = enc
	return nil
}

func (e *X264Encoder) Push(im image.Image) error {
	if e.enc == nil {
		return fmt.Errorf("encoder not started")
	}
	if err := e.enc.Encode(im); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

func (e *X264Encoder) Stop(audioWAV []byte) ([]byte, error) {
	if e.enc == nil {
		return nil, fmt.Errorf("encoder not started")
	}
	if err := e.enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush encoder: %w", err)
	}
	if err := e.enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	e.enc = nil
	return e.mux(e.buf.Bytes(), audioWAV)
}

// mux wraps the elementary stream and audio into one MP4. ffmpeg works on
// temp files; the blob is read back and the files removed.
func (e *X264Encoder) mux(h264, audioWAV []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "reelpress-mux")
	if err != nil {
		return nil, fmt.Errorf("mux temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	videoFile := filepath.Join(dir, "stream.h264")
	outFile := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(videoFile, h264, 0644); err != nil {
		return nil, fmt.Errorf("write video stream: %w", err)
	}

	args := []string{"-y", "-v", "error",
		"-r", fmt.Sprintf("%d", e.fps),
		"-i", videoFile,
	}
	if len(audioWAV) > 0 {
		audioFile := filepath.Join(dir, "audio.wav")
		if err := os.WriteFile(audioFile, audioWAV, 0644); err != nil {
			return nil, fmt.Errorf("write audio track: %w", err)
		}
		args = append(args, "-i", audioFile, "-c:a", "aac", "-shortest")
	}
	args = append(args, "-c:v", "copy", outFile)

	cmd := exec.Command("ffmpeg", args...)
	var out, errs bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errs
	if err := cmd.Run(); err != nil {
		e.log.Error("mux failed", "err", err, "ffmpeg", errs.String())
		return nil, fmt.Errorf("mux container: %w", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("read muxed output: %w", err)
	}
	return data, nil
}
