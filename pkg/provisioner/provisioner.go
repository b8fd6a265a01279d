// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package provisioner brings a Python environment into conformance with the
// backend's dependency manifest: it reports the interpreter version, upgrades
// pip, then installs the manifest from wheels only. The steps run in that
// fixed order and the first failure ends the run; nothing is rolled back
// or retried.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"quickcart.com/x/provisioner/cmd/provision/cmd/provisionerrors"
	"quickcart.com/x/provisioner/pkg/conformance"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/manifest"
	"quickcart.com/x/provisioner/pkg/pip"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
	"quickcart.com/x/provisioner/pkg/pyruntime"
	"quickcart.com/x/provisioner/pkg/simpleplatform"
	"quickcart.com/x/provisioner/pkg/utils"
)

// Prober checks that the package index can be reached
type Prober interface {
	Probe(ctx context.Context, indexURL string) error
}

type Result struct {
	State            State                           `yaml:"state"`
	// Reached is the last state completed before the run ended
	Reached          State                           `yaml:"reached"`
	Runtime          string                          `yaml:"runtime,omitempty"`
	Platform         string                          `yaml:"platform"`
	InstallerVersion string                          `yaml:"installer,omitempty"`
	Manifest         string                          `yaml:"manifest,omitempty"`
	Packages         int                             `yaml:"packages"`
	Changed          bool                            `yaml:"changed"`
	Error            *provisionerrors.ProvisionError `yaml:"error,omitempty"`
}

// Installation describes what InstallDependencies found and did
type Installation struct {
	Manifest *manifest.Manifest
	Report   *conformance.Report
	// Changed is false when the environment already conformed, or pip left it untouched
	Changed bool
}

type Provisioner struct {
	config   *provisionconfig.Config
	runner   executor.Runner
	prober   Prober
	out      utils.RawPrinter
	platform *simpleplatform.Platform

	state       State
	interpreter *pyruntime.Interpreter
}

func New(config *provisionconfig.Config, runner executor.Runner, prober Prober, out utils.RawPrinter) *Provisioner {
	return &Provisioner{
		config:   config,
		runner:   runner,
		prober:   prober,
		out:      out,
		platform: simpleplatform.CurrentPlatform(),
		state:    Start,
	}
}

func (p *Provisioner) State() State {
	return p.state
}

// Interpreter is the resolved interpreter, nil until a step has discovered it
func (p *Provisioner) Interpreter() *pyruntime.Interpreter {
	return p.interpreter
}

func (p *Provisioner) transition(ctx context.Context) error {
	n, err := p.state.advance()
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "provisioning state transition", "from", p.state, "to", n)
	p.state = n
	return nil
}

func (p *Provisioner) fail(ctx context.Context, err error) {
	slog.DebugContext(ctx, "provisioning state transition", "from", p.state, "to", Failed, "error", err)
	p.state = Failed
}

// Run performs one provisioning run under the environment lock
func (p *Provisioner) Run(ctx context.Context) (*Result, error) {
	result := &Result{State: Start, Platform: p.platform.String()}

	err := utils.WithEnvironmentLock(ctx, p.config.LockFilePath, func(ctx context.Context) error {
		return p.run(ctx, result)
	})
	if err != nil {
		if p.state != Failed {
			p.fail(ctx, err)
		}
		result.Reached = result.State
		result.State = Failed
		result.Error = provisionerrors.Standardize(err)
		slog.ErrorContext(ctx, "provisioning failed", "kind", result.Error.Kind, "code", result.Error.Code, "error", err)
		p.out.PrintErrln(color.RedString("✗ provisioning failed after reaching %s", result.Reached))
		return result, result.Error
	}

	slog.InfoContext(ctx, "provisioning finished",
		"state", result.State, "packages", result.Packages, "changed", result.Changed)
	p.out.Println(color.GreenString("✓ environment provisioned") + fmt.Sprintf(" (%d packages, %s)", result.Packages,
		lo.Ternary(result.Changed, "changes applied", "already up to date")))
	return result, nil
}

func (p *Provisioner) run(ctx context.Context, result *Result) error {
	manifestPath, err := p.config.AbsoluteManifestPath()
	if err != nil {
		return err
	}
	result.Manifest = manifestPath

	runtimeVersion, err := p.ReportRuntimeVersion(ctx)
	if err != nil {
		p.fail(ctx, err)
		return err
	}
	result.Runtime = runtimeVersion
	if err := p.transition(ctx); err != nil {
		return err
	}
	result.State = p.state

	installerVersion, err := p.UpgradeInstaller(ctx)
	if err != nil {
		p.fail(ctx, err)
		return err
	}
	result.InstallerVersion = installerVersion
	if err := p.transition(ctx); err != nil {
		return err
	}
	result.State = p.state

	installation, err := p.InstallDependencies(ctx, manifestPath)
	if err != nil {
		p.fail(ctx, err)
		return err
	}
	result.Packages = len(installation.Manifest.Entries)
	result.Changed = installation.Changed
	if err := p.transition(ctx); err != nil {
		return err
	}
	result.State = p.state
	result.Reached = p.state
	return nil
}

func (p *Provisioner) banner(step string) {
	p.out.Printf("%s %s\n", color.CyanString("==>"), step)
}

// ReportRuntimeVersion resolves the interpreter and reports its version, e.g. "Python 3.11.8"
func (p *Provisioner) ReportRuntimeVersion(ctx context.Context) (string, error) {
	p.banner("Checking Python runtime")

	interpreter, err := pyruntime.Discover(ctx, p.runner, p.config.Python, provisionconfig.DefaultPythonCandidates)
	if err != nil {
		return "", provisionerrors.NewRuntimeNotFoundError(err)
	}
	p.interpreter = interpreter

	slog.InfoContext(ctx, "python runtime",
		"version", interpreter.Version.String(), "path", interpreter.Path, "platform", p.platform.String())
	p.out.Printf("    %s on %s\n", color.New(color.Bold).Sprint(interpreter.Reported), p.platform.String())
	return interpreter.Reported, nil
}

func (p *Provisioner) ensureInterpreter(ctx context.Context) (*pyruntime.Interpreter, error) {
	if p.interpreter != nil {
		return p.interpreter, nil
	}
	interpreter, err := pyruntime.Discover(ctx, p.runner, p.config.Python, provisionconfig.DefaultPythonCandidates)
	if err != nil {
		return nil, provisionerrors.NewRuntimeNotFoundError(err)
	}
	p.interpreter = interpreter
	return interpreter, nil
}

func (p *Provisioner) installer(interpreter *pyruntime.Interpreter) *pip.Installer {
	return pip.New(p.runner, interpreter.Path, p.config.IndexURL)
}

// UpgradeInstaller upgrades pip to the latest version and returns that version.
// An unreachable index is fatal
func (p *Provisioner) UpgradeInstaller(ctx context.Context) (string, error) {
	p.banner("Upgrading pip")

	interpreter, err := p.ensureInterpreter(ctx)
	if err != nil {
		return "", err
	}

	if p.config.SkipIndexProbe {
		slog.DebugContext(ctx, "package index probe disabled")
	} else if err := p.prober.Probe(ctx, p.config.IndexURL); err != nil {
		return "", provisionerrors.NewIndexUnreachableError(err)
	}

	installer := p.installer(interpreter)
	if err := installer.Upgrade(ctx); err != nil {
		if errors.Is(err, pip.ErrNetwork) {
			return "", provisionerrors.NewIndexUnreachableError(err)
		}
		return "", provisionerrors.NewInstallerUpgradeError(err)
	}

	v, err := installer.Version(ctx)
	if err != nil {
		return "", provisionerrors.NewInstallerUpgradeError(err)
	}
	slog.InfoContext(ctx, "installer upgraded", "pip", v.String())
	p.out.Printf("    pip %s\n", v.String())
	return v.String(), nil
}

// InstallDependencies installs every manifest entry from binary artifacts only.
// When the installed set already satisfies the manifest pip is not invoked at all,
// unless the manifest pulls in requirements through options like -r or -c
// that only pip can evaluate
func (p *Provisioner) InstallDependencies(ctx context.Context, manifestPath string) (*Installation, error) {
	p.banner("Installing dependencies from " + manifestPath)

	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	interpreter, err := p.ensureInterpreter(ctx)
	if err != nil {
		return nil, err
	}
	installer := p.installer(interpreter)

	before, err := installer.Installed(ctx)
	if err != nil {
		return nil, err
	}
	report, err := conformance.Check(m, before)
	if err != nil {
		return nil, provisionerrors.NewMalformedManifestError(err)
	}

	opaque := m.OpaqueOptions()
	if report.Conforms() && len(opaque) == 0 {
		slog.InfoContext(ctx, "environment already satisfies the manifest", "packages", len(m.Entries))
		p.out.Printf("    all %d requirements already satisfied\n", len(m.Entries))
		return &Installation{Manifest: m, Report: report}, nil
	}
	slog.InfoContext(ctx, "installing dependencies",
		"packages", len(m.Entries), "unsatisfied", len(report.Unsatisfied()), "conditional", report.Count(conformance.Conditional),
		"options", opaque)

	if err := installer.InstallBinaryOnly(ctx, m.Path); err != nil {
		if errors.Is(err, pip.ErrNoBinaryArtifact) {
			return nil, provisionerrors.NewNoBinaryArtifactError(
				fmt.Errorf("%w (platform %s, wheel tags %s)", err, p.platform.String(), p.platform.WheelTagHint()))
		}
		return nil, provisionerrors.NewInstallFailedError(err)
	}

	after, err := installer.Installed(ctx)
	if err != nil {
		return nil, err
	}
	report, err = conformance.Check(m, after)
	if err != nil {
		return nil, provisionerrors.NewUnsatisfiedError(err)
	}
	if !report.Acceptable() {
		unsatisfied := lo.Map(report.Unsatisfied(), func(s *conformance.EntryStatus, _ int) string {
			return fmt.Sprintf("%s (installed: %s)", s.Required, lo.Ternary(s.Installed == "", "none", s.Installed))
		})
		return nil, provisionerrors.NewUnsatisfiedError(
			fmt.Errorf("pip succeeded but requirements are still unsatisfied: %s", strings.Join(unsatisfied, ", ")))
	}

	changed := !maps.Equal(before, after)
	p.out.Printf("    %d requirements satisfied\n", report.Count(conformance.Satisfied))
	return &Installation{Manifest: m, Report: report, Changed: changed}, nil
}

// Check reports how the current environment compares to the manifest without changing anything
func (p *Provisioner) Check(ctx context.Context, manifestPath string) (*conformance.Report, error) {
	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	interpreter, err := p.ensureInterpreter(ctx)
	if err != nil {
		return nil, err
	}

	installed, err := p.installer(interpreter).Installed(ctx)
	if err != nil {
		return nil, err
	}
	report, err := conformance.Check(m, installed)
	if err != nil {
		return nil, provisionerrors.NewMalformedManifestError(err)
	}
	return report, nil
}

func readManifest(manifestPath string) (*manifest.Manifest, error) {
	// a directory would otherwise surface as a bare read error
	exists, err := utils.FileExists(manifestPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, provisionerrors.NewManifestNotFoundError(fmt.Errorf("%s: %w", manifestPath, os.ErrNotExist))
	}

	m, err := manifest.Read(manifestPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, provisionerrors.NewManifestNotFoundError(err)
	case errors.Is(err, manifest.ErrMalformedManifest):
		return nil, provisionerrors.NewMalformedManifestError(err)
	case err != nil:
		return nil, err
	}
	return m, nil
}
