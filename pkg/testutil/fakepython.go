// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/pyruntime"
)

const FakePythonPath = "/usr/bin/python3"

// Wheel is the distribution a requirement resolves to
type Wheel struct {
	Name    string
	Version string
}

// FakePython is an executor.Runner simulating an interpreter, its pip and a package index.
// Resolution is a plain table lookup: each requirement line resolves to the Wheel Index lists
// for it, and a line missing from Index has no binary artifact. Tests spell out what pip would
// pick rather than have the fake reimplement version matching
type FakePython struct {
	mu sync.Mutex

	PythonVersion string
	PipVersion    string
	LatestPip     string
	// IndexReachable false makes every pip network operation fail
	IndexReachable bool
	// Index maps a requirement line, as written in the requirements file, to its wheel
	Index map[string]Wheel
	// Conflict, when set, fails every requirements install with a resolver conflict
	Conflict string
	// Installed maps a normalized project name to its installed version
	Installed map[string]string

	Calls []executor.Command
	// InstallCount counts package installs performed by `pip install -r`
	InstallCount int
}

func NewFakePython() *FakePython {
	return &FakePython{
		PythonVersion:  "3.11.8",
		PipVersion:     "23.2.1",
		LatestPip:      "24.0",
		IndexReachable: true,
		Index:          map[string]Wheel{},
		Installed:      map[string]string{"pip": "23.2.1", "setuptools": "65.5.0"},
	}
}

func (f *FakePython) Run(_ context.Context, cmd executor.Command) (*executor.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)

	args := cmd.Args
	switch {
	case len(args) == 1 && args[0] == "--version":
		return f.ok("Python " + f.PythonVersion + "\n")
	case len(args) >= 2 && args[0] == "-m" && args[1] == "pip":
		return f.pip(cmd, args[2:])
	}
	return f.fail(cmd, 2, fmt.Sprintf("unknown option %v", args))
}

// PipCalls returns the pip subcommand invocations, e.g. [["install", "--upgrade", "pip", ...]]
func (f *FakePython) PipCalls(subcommand string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var r [][]string
	for _, c := range f.Calls {
		if len(c.Args) > 2 && c.Args[0] == "-m" && c.Args[1] == "pip" && c.Args[2] == subcommand {
			r = append(r, c.Args[2:])
		}
	}
	return r
}

func (f *FakePython) pip(cmd executor.Command, args []string) (*executor.Result, error) {
	if len(args) == 0 {
		return f.fail(cmd, 2, "ERROR: You must give at least one requirement")
	}
	switch args[0] {
	case "--version":
		return f.ok(fmt.Sprintf("pip %s from /usr/lib/python3/site-packages/pip (python %s)\n", f.Installed["pip"], f.PythonVersion))
	case "list":
		return f.list()
	case "install":
		if lo.Contains(args, "--upgrade") && lo.Contains(args, "pip") {
			return f.upgradePip(cmd)
		}
		if i := slices.Index(args, "-r"); i >= 0 && i+1 < len(args) {
			if !lo.Contains(args, "--only-binary=:all:") {
				return f.fail(cmd, 2, "fake index only serves binary-only installs")
			}
			return f.installRequirements(cmd, args[i+1])
		}
	}
	return f.fail(cmd, 2, fmt.Sprintf("ERROR: unknown command %q", args[0]))
}

func (f *FakePython) list() (*executor.Result, error) {
	type pkg struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	}
	pkgs := lo.MapToSlice(f.Installed, func(name, version string) pkg {
		return pkg{Name: name, Version: version}
	})
	slices.SortFunc(pkgs, func(a, b pkg) int { return strings.Compare(a.Name, b.Name) })
	out, err := yaml.MarshalWithOptions(pkgs, yaml.JSON())
	if err != nil {
		return nil, err
	}
	return f.ok(string(out))
}

func (f *FakePython) upgradePip(cmd executor.Command) (*executor.Result, error) {
	if !f.IndexReachable {
		return f.fail(cmd, 1, "WARNING: Retrying (Retry(total=4...)) after connection broken by 'NewConnectionError'\n"+
			"ERROR: Could not find a version that satisfies the requirement pip (from versions: none)")
	}
	if f.Installed["pip"] == f.LatestPip {
		return f.ok("Requirement already satisfied: pip in /usr/lib/python3/site-packages (" + f.LatestPip + ")\n")
	}
	f.Installed["pip"] = f.LatestPip
	return f.ok("Successfully installed pip-" + f.LatestPip + "\n")
}

func (f *FakePython) installRequirements(cmd executor.Command, path string) (*executor.Result, error) {
	requirements, err := readRequirements(path)
	if err != nil {
		return f.fail(cmd, 1, fmt.Sprintf("ERROR: Could not open requirements file: %s", err.Error()))
	}
	if !f.IndexReachable {
		return f.fail(cmd, 1, "WARNING: Retrying (Retry(total=4...)) after connection broken by 'NewConnectionError'\n"+
			"ERROR: Could not find a version that satisfies the requirement "+requirements[0]+" (from versions: none)")
	}
	if f.Conflict != "" {
		return f.fail(cmd, 1, "ERROR: Cannot install "+strings.Join(requirements, " and ")+" because these package versions have conflicting dependencies.\n"+
			"The conflict is caused by:\n    "+f.Conflict+"\n"+
			"ERROR: ResolutionImpossible: for help visit https://pip.pypa.io/en/latest/topics/dependency-resolution/#dealing-with-dependency-conflicts")
	}

	// resolve everything first: pip installs nothing when resolution fails
	var plan []Wheel
	for _, r := range requirements {
		w, ok := f.Index[r]
		if !ok {
			return f.fail(cmd, 1, fmt.Sprintf(
				"ERROR: Could not find a version that satisfies the requirement %s (from versions: none)\n"+
					"ERROR: No matching distribution found for %s", r, r))
		}
		plan = append(plan, w)
	}

	var out strings.Builder
	for _, w := range plan {
		if f.Installed[w.Name] == w.Version {
			fmt.Fprintf(&out, "Requirement already satisfied: %s==%s\n", w.Name, w.Version)
			continue
		}
		f.Installed[w.Name] = w.Version
		f.InstallCount++
		fmt.Fprintf(&out, "Successfully installed %s-%s\n", w.Name, w.Version)
	}
	return f.ok(out.String())
}

// readRequirements returns the requirement lines of path as written, following -r includes
// relative to the including file. Other option lines are ignored
func readRequirements(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var requirements []string
	for _, line := range strings.Split(string(contents), "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "-r"), strings.HasPrefix(line, "--requirement"):
			include := strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(strings.TrimPrefix(line, "--requirement"), "-r"), "= "))
			if !filepath.IsAbs(include) {
				include = filepath.Join(filepath.Dir(path), include)
			}
			included, err := readRequirements(include)
			if err != nil {
				return nil, err
			}
			requirements = append(requirements, included...)
		case strings.HasPrefix(line, "-"):
		default:
			requirements = append(requirements, line)
		}
	}
	if len(requirements) == 0 {
		return nil, fmt.Errorf("no requirements in %s", path)
	}
	return requirements, nil
}

func (f *FakePython) ok(stdout string) (*executor.Result, error) {
	return &executor.Result{Stdout: stdout}, nil
}

func (f *FakePython) fail(cmd executor.Command, code int, stderr string) (*executor.Result, error) {
	return &executor.Result{ExitCode: code, Stderr: stderr}, &executor.ExitError{Command: cmd.String(), ExitCode: code, Stderr: stderr}
}

// StubLookPath resolves every interpreter name to FakePythonPath for the duration of the test
func StubLookPath(t *testing.T) {
	original := pyruntime.LookPath
	pyruntime.LookPath = func(string) (string, error) {
		return FakePythonPath, nil
	}
	t.Cleanup(func() { pyruntime.LookPath = original })
}

var _ executor.Runner = (*FakePython)(nil)
