package score

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"resumatch-engine/internal/artifact"
	"resumatch-engine/internal/subproc"
)

// Invoker runs the external scoring procedure against staged artifacts.
// Implementations make exactly one attempt per call; retry policy, if
// any, belongs to the caller.
type Invoker interface {
	Invoke(ctx context.Context, analysis, jobs, filters artifact.Handle) (*Result, error)
}

// PythonInvoker shells out to the recommender script with the staged file
// paths as arguments and reads one JSON document from stdout.
type PythonInvoker struct {
	Python  string // interpreter; python3 when empty
	Script  string // path to job_recommender.py
	Timeout time.Duration
	Log     *zap.Logger
}

const DefaultTimeout = 2 * time.Minute

func (p *PythonInvoker) Invoke(ctx context.Context, analysis, jobs, filters artifact.Handle) (*Result, error) {
	bin := p.Python
	if bin == "" {
		bin = "python3"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	args := []string{p.Script, analysis.Path, jobs.Path}
	if !filters.IsZero() {
		args = append(args, filters.Path)
	}

	start := time.Now()
	out, err := subproc.Run(ctx, subproc.Options{Timeout: timeout}, bin, args...)
	if err != nil {
		return nil, &Error{Kind: KindProcessFailure, Err: err}
	}

	log.Debug("scorer finished",
		zap.Duration("took", time.Since(start)),
		zap.Int("stdout_bytes", len(out.Stdout)),
		zap.Bool("timed_out", out.TimedOut))

	switch {
	case out.TimedOut:
		return nil, &Error{Kind: KindTimeout, Msg: "scorer exceeded " + timeout.String()}
	case out.TooLarge:
		return nil, &Error{Kind: KindOutputTooLarge, Msg: "scorer output exceeded cap"}
	}

	stdout := bytes.TrimSpace(out.Stdout)
	if len(stdout) == 0 {
		// No result. Diagnostic text, if any, becomes the error message.
		if out.Stderr != "" {
			return nil, &Error{Kind: KindProcessFailure, Msg: out.Stderr, Err: out.ExitErr}
		}
		if out.ExitErr != nil {
			return nil, &Error{Kind: KindProcessFailure, Err: out.ExitErr}
		}
		return nil, &Error{Kind: KindMalformedResult, Msg: "scorer produced no output"}
	}

	var res Result
	if err := json.Unmarshal(stdout, &res); err != nil {
		return nil, &Error{Kind: KindMalformedResult, Err: err}
	}

	// A parsed result wins; stderr is treated as subprocess logging.
	if out.Stderr != "" {
		log.Debug("scorer stderr", zap.String("stderr", out.Stderr))
	}

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "scoring procedure reported failure"
		}
		return nil, &Error{Kind: KindReportedFailure, Msg: msg}
	}
	return &res, nil
}
