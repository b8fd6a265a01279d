// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pyruntime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/manifest"
)

var ErrRuntimeNotFound = errors.New("python interpreter not found")

// LookPath is overridden in tests
var LookPath = exec.LookPath

type Interpreter struct {
	// Path is the resolved executable
	Path string
	// Reported is the raw `--version` output, e.g. "Python 3.11.8"
	Reported string
	Version  *semver.Version
}

func (i *Interpreter) String() string {
	return fmt.Sprintf("%s (%s)", i.Reported, i.Path)
}

var versionRegex = regexp.MustCompile(`Python\s+(\S+)`)

// Discover resolves the interpreter to provision: the configured one, or the first
// of candidates found on PATH. It runs `--version` to confirm it is usable.
func Discover(ctx context.Context, runner executor.Runner, configured string, candidates []string) (*Interpreter, error) {
	if configured != "" {
		candidates = []string{configured}
	}

	var errs []error
	for _, c := range candidates {
		p, err := LookPath(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return Inspect(ctx, runner, p)
	}
	return nil, fmt.Errorf("%w (tried %s): %w", ErrRuntimeNotFound, strings.Join(candidates, ", "), errors.Join(errs...))
}

// Inspect queries the interpreter at path for its version
func Inspect(ctx context.Context, runner executor.Runner, path string) (*Interpreter, error) {
	result, err := runner.Run(ctx, executor.Command{Name: path, Args: []string{"--version"}, Quiet: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntimeNotFound, err)
	}

	// python2 and early python3 print the version on stderr
	out := strings.TrimSpace(result.Stdout + "\n" + result.Stderr)
	groups := versionRegex.FindStringSubmatch(out)
	if groups == nil {
		return nil, fmt.Errorf("%w: unrecognized version output %q from %s", ErrRuntimeNotFound, out, path)
	}

	// builds from a distro's patched tree report e.g. "3.12.3+"
	v, err := manifest.ToSemver(strings.TrimSuffix(groups[1], "+"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntimeNotFound, err)
	}

	return &Interpreter{
		Path:     path,
		Reported: groups[0],
		Version:  v,
	}, nil
}
