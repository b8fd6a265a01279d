// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pip drives the package installer of a Python interpreter.
// Every invocation goes through `<python> -m pip` so the installer always
// matches the interpreter being provisioned.
package pip

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/manifest"
)

const OnlyBinaryAll = "--only-binary=:all:"

var (
	// ErrNoBinaryArtifact means the resolver found no wheel satisfying some requirement.
	// Conflicting requirements (ResolutionImpossible) are not tagged: every artifact exists,
	// they just cannot be installed together
	ErrNoBinaryArtifact = errors.New("no binary artifact satisfies the requirement")
	// ErrNetwork means pip failed to talk to the index
	ErrNetwork = errors.New("package index unreachable")
)

var (
	noBinaryPatterns = []string{
		"No matching distribution found for",
		"Could not find a version that satisfies the requirement",
	}
	networkPatterns = []string{
		"NewConnectionError",
		"Failed to establish a new connection",
		"Temporary failure in name resolution",
		"Max retries exceeded",
		"ConnectTimeoutError",
	}
)

// pipEnv keeps pip's diagnostics free of ANSI colors and progress bars, so classify can match them
var pipEnv = []string{"PIP_NO_COLOR=1", "PIP_PROGRESS_BAR=off"}

var (
	pipVersionRegex = regexp.MustCompile(`^pip\s+(\S+)`)
	missingReqRegex = regexp.MustCompile(`No matching distribution found for (\S+)`)
)

type Installer struct {
	runner   executor.Runner
	python   string
	indexURL string
}

// New returns an Installer for the interpreter at python.
// An empty indexURL leaves the choice of index to pip's own configuration
func New(runner executor.Runner, python, indexURL string) *Installer {
	return &Installer{runner: runner, python: python, indexURL: indexURL}
}

func (i *Installer) command(quiet bool, args ...string) executor.Command {
	base := []string{"-m", "pip"}
	base = append(base, args...)
	base = append(base, "--disable-pip-version-check", "--no-input")
	return executor.Command{
		Name:  i.python,
		Args:  base,
		Env:   pipEnv,
		Quiet: quiet,
	}
}

func (i *Installer) indexArgs() []string {
	if i.indexURL == "" {
		return nil
	}
	return []string{"--index-url", i.indexURL}
}

// Version reports the installer's own version
func (i *Installer) Version(ctx context.Context) (*semver.Version, error) {
	result, err := i.runner.Run(ctx, i.command(true, "--version"))
	if err != nil {
		return nil, err
	}
	groups := pipVersionRegex.FindStringSubmatch(strings.TrimSpace(result.Stdout))
	if groups == nil {
		return nil, fmt.Errorf("unrecognized pip version output %q", strings.TrimSpace(result.Stdout))
	}
	return manifest.ToSemver(groups[1])
}

// Upgrade upgrades pip itself to the latest version the index offers
func (i *Installer) Upgrade(ctx context.Context) error {
	args := append([]string{"install", "--upgrade", "pip"}, i.indexArgs()...)
	_, err := i.runner.Run(ctx, i.command(false, args...))
	if err != nil {
		return classify(err)
	}
	return nil
}

// InstallBinaryOnly installs every requirement in manifestPath using wheels only.
// pip resolves the whole set before installing, so a requirement without a wheel
// fails the call without installing anything.
// pip runs from the manifest's directory: relative paths in it (-e ./lib, --find-links wheels/)
// resolve against the working directory
func (i *Installer) InstallBinaryOnly(ctx context.Context, manifestPath string) error {
	args := append([]string{"install", OnlyBinaryAll, "-r", manifestPath}, i.indexArgs()...)
	cmd := i.command(false, args...)
	cmd.Dir = filepath.Dir(manifestPath)
	_, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify tags pip failures with ErrNoBinaryArtifact or ErrNetwork based on its diagnostics,
// keeping the underlying error (and pip's stderr) in the chain
func classify(err error) error {
	var exitErr *executor.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}

	switch {
	case containsAny(exitErr.Stderr, networkPatterns):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	case containsAny(exitErr.Stderr, noBinaryPatterns):
		if groups := missingReqRegex.FindStringSubmatch(exitErr.Stderr); groups != nil {
			return fmt.Errorf("%w %s: %w", ErrNoBinaryArtifact, groups[1], err)
		}
		return fmt.Errorf("%w: %w", ErrNoBinaryArtifact, err)
	}
	return err
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
