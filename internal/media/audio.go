package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate    = 44100
	audioChannels = 2
	monitorFrames = 1024
)

// Router is the audio graph for one export: it decodes the clip's audio
// span to PCM and fans it out to the live output device (monitor) and an
// in-memory capture buffer that becomes the muxed audio track. Failure to
// open the monitor stream is fatal to the export, surfaced from Start
// before any recording begins.
type Router struct {
	path    string
	start   float64
	end     float64
	monitor bool
	log     *slog.Logger

	mu      sync.Mutex
	capture bytes.Buffer

	cmd    *exec.Cmd
	stream *portaudio.Stream
	out    []int16
	stop   chan struct{}
	done   chan struct{}
}

func NewRouter(path string, start, end float64, monitor bool, log *slog.Logger) *Router {
	return &Router{
		path:    path,
		start:   start,
		end:     end,
		monitor: monitor,
		log:     log,
	}
}

func (r *Router) Start() error {
	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", r.start),
		"-t", fmt.Sprintf("%.3f", r.end-r.start),
		"-i", r.path,
		"-vn",
		"-f", "s16le",
		"-ac", fmt.Sprintf("%d", audioChannels),
		"-ar", fmt.Sprintf("%d", sampleRate),
		"pipe:1",
	)
	var errs bytes.Buffer
	cmd.Stderr = &errs
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("audio pipe: %w", err)
	}

	if r.monitor {
		r.out = make([]int16, monitorFrames*audioChannels)
		stream, err := portaudio.OpenDefaultStream(0, audioChannels, sampleRate, monitorFrames, &r.out)
		if err != nil {
			return fmt.Errorf("open monitor stream: %w", err)
		}
		if err := stream.Start(); err != nil {
			stream.Close()
			return fmt.Errorf("start monitor stream: %w", err)
		}
		r.stream = stream
	}

	if err := cmd.Start(); err != nil {
		r.closeMonitor()
		return fmt.Errorf("start audio decoder: %w", err)
	}

	r.cmd = cmd
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.pump(stdout, &errs)
	return nil
}

// pump moves decoded PCM into the capture buffer and, when monitoring,
// into the output device in monitor-buffer sized chunks.
func (r *Router) pump(in io.Reader, errs *bytes.Buffer) {
	defer close(r.done)
	chunk := make([]byte, monitorFrames*audioChannels*2)

	for {
		select {
		case <-r.stop:
			r.cmd.Wait()
			return
		default:
		}

		n, err := io.ReadFull(in, chunk)
		if n > 0 {
			r.mu.Lock()
			r.capture.Write(chunk[:n])
			r.mu.Unlock()

			if r.stream != nil && n == len(chunk) {
				for i := 0; i < len(r.out); i++ {
					r.out[i] = int16(binary.LittleEndian.Uint16(chunk[i*2:]))
				}
				if werr := r.stream.Write(); werr != nil {
					// underflow on a stalled device is not worth aborting for
					r.log.Debug("monitor write", "err", werr)
				}
			}
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				r.log.Debug("audio decoder stopped", "err", err, "ffmpeg", strings.TrimSpace(errs.String()))
			}
			r.cmd.Wait()
			return
		}
	}
}

func (r *Router) Stop() {
	if r.stop != nil {
		select {
		case <-r.stop:
		default:
			close(r.stop)
		}
	}
	if r.cmd != nil && r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	if r.done != nil {
		<-r.done
	}
	r.closeMonitor()
}

func (r *Router) closeMonitor() {
	if r.stream != nil {
		r.stream.Stop()
		r.stream.Close()
		r.stream = nil
	}
}

// CaptureWAV wraps the captured PCM into a WAV blob for muxing.
func (r *Router) CaptureWAV() ([]byte, error) {
	r.mu.Lock()
	pcm := make([]byte, r.capture.Len())
	copy(pcm, r.capture.Bytes())
	r.mu.Unlock()

	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio captured")
	}
	return BuildWAV(pcm, sampleRate, audioChannels), nil
}

// BuildWAV prepends a canonical RIFF/WAVE header to s16le PCM data.
func BuildWAV(pcm []byte, rate, channels int) []byte {
	var buf bytes.Buffer
	blockAlign := channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
