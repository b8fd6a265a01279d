// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package executor runs the external tools the provisioner drives
// (the interpreter and pip), streaming their output into the log.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Env is appended to os.Environ()
	Env []string
	// Quiet logs output at debug level, for machine-readable output
	Quiet bool
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner is the seam between the provisioner and the processes it spawns
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command ran but exited non-zero
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%q exited with code %d", e.Command, e.ExitCode)
	if tail := lastLines(e.Stderr, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// ExecRunner implements Runner using os/exec
type ExecRunner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // the interpreter is operator-configured
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stdoutLevel, stderrLevel := slog.LevelInfo, slog.LevelWarn
	if c.Quiet {
		stdoutLevel, stderrLevel = slog.LevelDebug, slog.LevelDebug
	}

	var stdout, stderr bytes.Buffer
	stdoutLog := newLogWriter(ctx, r.logger, stdoutLevel, c.Name)
	stderrLog := newLogWriter(ctx, r.logger, stderrLevel, c.Name)
	cmd.Stdout = io.MultiWriter(&stdout, stdoutLog)
	cmd.Stderr = io.MultiWriter(&stderr, stderrLog)

	r.logger.DebugContext(ctx, "running command", "cmd", c.String(), "dir", c.Dir)
	err := cmd.Run()
	stdoutLog.Flush()
	stderrLog.Flush()

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{Command: c.String(), ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	// never started (not found, permission) or killed via ctx
	result.ExitCode = -1
	return result, fmt.Errorf("running %q: %w", c.String(), err)
}

var _ Runner = (*ExecRunner)(nil)

// logWriter forwards complete lines to the logger; a trailing partial line is held until Flush
type logWriter struct {
	ctx    context.Context
	logger *slog.Logger
	level  slog.Level
	source string

	mu  sync.Mutex
	buf []byte
}

func newLogWriter(ctx context.Context, logger *slog.Logger, level slog.Level, source string) *logWriter {
	return &logWriter{ctx: ctx, logger: logger, level: level, source: source}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *logWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	w.logger.Log(w.ctx, w.level, line, "source", w.source)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
