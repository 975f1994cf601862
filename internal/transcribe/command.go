package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// commandBackend runs a local whisper helper that prints
// {"text": ..., "language": ..., "segments": [{"start", "end", "text"}]} on stdout.
type commandBackend struct {
	argv []string
}

// NewCommandBackend returns a Backend that appends the audio path to argv and runs it.
func NewCommandBackend(argv []string) Backend {
	return &commandBackend{argv: append([]string(nil), argv...)}
}

type commandOut struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

func (c *commandBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	args := append(append([]string(nil), c.argv[1:]...), audioPath)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return Result{}, fmt.Errorf("%s failed: %s", c.argv[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return Result{}, fmt.Errorf("run %s: %w", c.argv[0], err)
	}
	var parsed commandOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse %s output: %w", c.argv[0], err)
	}
	return toResult(parsed.Text, parsed.Language, parsed.Segments), nil
}
