// Package denoise reduces background noise in uploaded recordings.
package denoise

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Denoiser writes a cleaned copy of an audio file and returns its path.
type Denoiser interface {
	Denoise(ctx context.Context, audioPath, tmpDir string) (string, error)
}

// FFmpeg applies an audio filter (afftdn by default) through the ffmpeg binary.
type FFmpeg struct {
	Bin    string
	Filter string
}

// NewFFmpeg returns a Denoiser using bin and filter; empty values select defaults.
func NewFFmpeg(bin, filter string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	if filter == "" {
		filter = "afftdn=nf=-25"
	}
	return &FFmpeg{Bin: bin, Filter: filter}
}

// Denoise runs ffmpeg -y -i in -af filter -ac 1 -ar 16000 out.wav.
func (f *FFmpeg) Denoise(ctx context.Context, audioPath, tmpDir string) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	out := filepath.Join(tmpDir, base+"_denoised.wav")

	cmd := exec.CommandContext(ctx, f.Bin,
		"-y", "-i", audioPath,
		"-af", f.Filter,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return out, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
