package media

import (
	"encoding/binary"
	"testing"
)

func TestParseProbe(t *testing.T) {
	t.Run("integer rate", func(t *testing.T) {
		w, h, fps, dur, err := parseProbe("1920,1080,30/1\n13.500000\n")
		if err != nil {
			t.Fatalf("parseProbe: %v", err)
		}
		if w != 1920 || h != 1080 {
			t.Errorf("dims = %dx%d, want 1920x1080", w, h)
		}
		if fps != 30 {
			t.Errorf("fps = %v, want 30", fps)
		}
		if dur != 13.5 {
			t.Errorf("duration = %v, want 13.5", dur)
		}
	})

	t.Run("ntsc rate", func(t *testing.T) {
		_, _, fps, _, err := parseProbe("1280,720,30000/1001\n60\n")
		if err != nil {
			t.Fatalf("parseProbe: %v", err)
		}
		if fps < 29.96 || fps > 29.98 {
			t.Errorf("fps = %v, want ~29.97", fps)
		}
	})

	t.Run("incomplete output", func(t *testing.T) {
		if _, _, _, _, err := parseProbe("\n"); err == nil {
			t.Error("expected error for empty probe output")
		}
	})

	t.Run("zero denominator", func(t *testing.T) {
		if _, _, _, _, err := parseProbe("640,480,25/0\n1\n"); err == nil {
			t.Error("expected error for zero denominator")
		}
	})
}

func TestBuildWAV(t *testing.T) {
	pcm := make([]byte, 1000)
	wav := BuildWAV(pcm, 44100, 2)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("riff size = %d, want %d", got, 36+len(pcm))
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 44100*4 {
		t.Errorf("byte rate = %d, want %d", got, 44100*4)
	}
	if string(wav[36:40]) != "data" {
		t.Error("missing data chunk marker")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}
