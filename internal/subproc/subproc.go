// Package subproc runs an external procedure with bounded output and a
// hard deadline. Both the scorer and the scraper boundaries go through it.
package subproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultMaxOutput caps captured stdout at 10 MiB to guard against
// runaway subprocess output.
const DefaultMaxOutput = 10 << 20

const maxStderr = 64 << 10

type Options struct {
	Timeout   time.Duration // hard deadline; the process is killed on expiry
	MaxOutput int64         // stdout cap in bytes; DefaultMaxOutput when 0
}

type Output struct {
	Stdout   []byte
	Stderr   string // trimmed, capped diagnostic text
	TimedOut bool
	TooLarge bool
	ExitErr  error // non-nil when the process exited abnormally
}

// Run executes bin with args and collects its output under the caps.
// An error is returned only when the process could not be started.
func Run(ctx context.Context, opts Options, bin string, args ...string) (Output, error) {
	maxOut := opts.MaxOutput
	if maxOut <= 0 {
		maxOut = DefaultMaxOutput
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &capWriter{w: &stderr, left: maxStderr}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start %s: %w", bin, err)
	}

	// Read one byte past the cap to detect overflow.
	data, readErr := io.ReadAll(io.LimitReader(stdoutPipe, maxOut+1))

	var out Output

	if int64(len(data)) > maxOut {
		// Stop the writer; it may be blocked on a full pipe.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		out.TooLarge = true
		out.Stderr = strings.TrimSpace(stderr.String())
		return out, nil
	}
	out.Stdout = data

	waitErr := cmd.Wait()
	// Wait joins exec's stderr copier; the buffer is only stable after it
	// returns. Reading earlier races the copier and drops diagnostics the
	// process writes after closing stdout.
	out.Stderr = strings.TrimSpace(stderr.String())
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		return out, nil
	}
	if waitErr != nil {
		out.ExitErr = waitErr
		return out, nil
	}
	if readErr != nil {
		out.ExitErr = readErr
	}
	return out, nil
}

// capWriter drops bytes past the cap instead of failing the process.
type capWriter struct {
	w    io.Writer
	left int
}

func (c *capWriter) Write(p []byte) (int, error) {
	n := len(p)
	if c.left > 0 {
		chunk := p
		if len(chunk) > c.left {
			chunk = chunk[:c.left]
		}
		if _, err := c.w.Write(chunk); err != nil {
			return 0, err
		}
		c.left -= len(chunk)
	}
	return n, nil
}
