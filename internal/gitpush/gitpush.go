// Package gitpush stages, commits and pushes a working tree in the fixed
// order add, commit, branch rename, push.
package gitpush

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultMessage = "Update project"
	DefaultBranch  = "main"
	DefaultRemote  = "origin"
)

// Runner executes one command without a shell.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec in Dir, or the process working
// directory when Dir is empty.
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// StepError reports the step that stopped the run and what git printed.
type StepError struct {
	Step   string
	Stderr string
	Err    error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Message skips the prompt when set.
	Message string
	Branch  string
	Remote  string
	// Interactive enables reading the commit message from In.
	Interactive bool
	In          io.Reader
	Out         io.Writer
}

type Pusher struct {
	runner Runner
	logger zerolog.Logger
}

func New(runner Runner, logger zerolog.Logger) *Pusher {
	return &Pusher{runner: runner, logger: logger.With().Str("component", "gitpush").Logger()}
}

// Push runs the steps in order. A failed commit is logged and skipped since
// there may be nothing new to record; every other failure stops the run.
func (p *Pusher) Push(ctx context.Context, opts Options) error {
	branch := firstNonEmpty(opts.Branch, DefaultBranch)
	remote := firstNonEmpty(opts.Remote, DefaultRemote)

	if err := p.step(ctx, "add", "git", "add", "."); err != nil {
		return err
	}

	message, err := commitMessage(opts)
	if err != nil {
		return err
	}
	if err := p.step(ctx, "commit", "git", "commit", "-m", message); err != nil {
		p.logger.Warn().Err(err).Msg("nothing to commit or commit failed, continuing")
	}

	if err := p.step(ctx, "branch", "git", "branch", "-M", branch); err != nil {
		return err
	}
	if err := p.step(ctx, "push", "git", "push", "-u", remote, branch); err != nil {
		return err
	}

	p.logger.Info().Str("remote", remote).Str("branch", branch).Msg("pushed")
	return nil
}

func (p *Pusher) step(ctx context.Context, name string, command string, args ...string) error {
	p.logger.Info().Str("step", name).Strs("args", args).Msg("running")
	stdout, stderr, err := p.runner.Run(ctx, command, args...)
	if out := strings.TrimSpace(stdout); out != "" {
		p.logger.Debug().Str("step", name).Str("stdout", out).Send()
	}
	if err != nil {
		return &StepError{Step: name, Stderr: stderr, Err: err}
	}
	return nil
}

func commitMessage(opts Options) (string, error) {
	if msg := strings.TrimSpace(opts.Message); msg != "" {
		return msg, nil
	}
	if !opts.Interactive || opts.In == nil {
		return DefaultMessage, nil
	}
	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Enter commit message (default: '%s'): ", DefaultMessage)
	}
	line, err := bufio.NewReader(opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read commit message: %w", err)
	}
	if msg := strings.TrimSpace(line); msg != "" {
		return msg, nil
	}
	return DefaultMessage, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
