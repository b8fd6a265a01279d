// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pyruntime_test

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/pyruntime"
	"quickcart.com/x/provisioner/pkg/testutil"
)

// scripted answers every command with a fixed result
type scripted struct {
	result *executor.Result
	err    error
	calls  []executor.Command
}

func (s *scripted) Run(_ context.Context, cmd executor.Command) (*executor.Result, error) {
	s.calls = append(s.calls, cmd)
	return s.result, s.err
}

func stubPath(t *testing.T, found map[string]string) {
	original := pyruntime.LookPath
	pyruntime.LookPath = func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	t.Cleanup(func() { pyruntime.LookPath = original })
}

func TestDiscoverConfigured(t *testing.T) {
	stubPath(t, map[string]string{"python3.12": "/opt/py/bin/python3.12", "python3": "/usr/bin/python3"})
	runner := &scripted{result: &executor.Result{Stdout: "Python 3.12.1\n"}}

	interp, err := pyruntime.Discover(testutil.Context(t), runner, "python3.12", []string{"python3"})
	require.NoError(t, err)
	assert.Equal(t, "/opt/py/bin/python3.12", interp.Path)
	assert.Equal(t, "Python 3.12.1", interp.Reported)
	assert.Equal(t, "3.12.1", interp.Version.String())
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"--version"}, runner.calls[0].Args)
}

func TestDiscoverFallsBackToCandidates(t *testing.T) {
	stubPath(t, map[string]string{"python": "/usr/bin/python"})
	runner := &scripted{result: &executor.Result{Stdout: "Python 3.10.12\n"}}

	interp, err := pyruntime.Discover(testutil.Context(t), runner, "", []string{"python3", "python"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python", interp.Path)
	assert.Equal(t, "Python 3.10.12 (/usr/bin/python)", interp.String())
}

func TestDiscoverNotFound(t *testing.T) {
	stubPath(t, map[string]string{})
	runner := &scripted{}

	_, err := pyruntime.Discover(testutil.Context(t), runner, "", []string{"python3", "python"})
	require.ErrorIs(t, err, pyruntime.ErrRuntimeNotFound)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "python3, python")
	assert.Empty(t, runner.calls)
}

func TestInspect(t *testing.T) {
	cases := []struct {
		name     string
		result   *executor.Result
		err      error
		reported string
		version  string
		wantErr  bool
	}{
		{name: "stdout", result: &executor.Result{Stdout: "Python 3.11.8\n"}, reported: "Python 3.11.8", version: "3.11.8"},
		{name: "stderr", result: &executor.Result{Stderr: "Python 2.7.18\n"}, reported: "Python 2.7.18", version: "2.7.18"},
		{name: "prerelease", result: &executor.Result{Stdout: "Python 3.13.0rc1\n"}, reported: "Python 3.13.0rc1", version: "3.13.0-rc1"},
		{name: "garbage", result: &executor.Result{Stdout: "hello\n"}, wantErr: true},
		{name: "exec failure", result: &executor.Result{ExitCode: -1}, err: fmt.Errorf("exec: permission denied"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &scripted{result: tc.result, err: tc.err}
			interp, err := pyruntime.Inspect(testutil.Context(t), runner, "/usr/bin/python3")
			if tc.wantErr {
				require.ErrorIs(t, err, pyruntime.ErrRuntimeNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.reported, interp.Reported)
			assert.Equal(t, tc.version, interp.Version.String())
		})
	}
}
