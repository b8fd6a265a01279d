// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pip

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/testutil"
)

const testIndex = "https://pypi.org/simple/"

func TestVersion(t *testing.T) {
	py := testutil.NewFakePython()
	v, err := New(py, testutil.FakePythonPath, testIndex).Version(testutil.Context(t))
	require.NoError(t, err)
	assert.Equal(t, "23.2.1", v.String())
}

func TestUpgrade(t *testing.T) {
	ctx := testutil.Context(t)

	t.Run("upgrades to latest", func(t *testing.T) {
		py := testutil.NewFakePython()
		require.NoError(t, New(py, testutil.FakePythonPath, testIndex).Upgrade(ctx))
		assert.Equal(t, py.LatestPip, py.Installed["pip"])

		calls := py.PipCalls("install")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"install", "--upgrade", "pip", "--index-url", testIndex, "--disable-pip-version-check", "--no-input"}, calls[0])
	})

	t.Run("no index url", func(t *testing.T) {
		py := testutil.NewFakePython()
		require.NoError(t, New(py, testutil.FakePythonPath, "").Upgrade(ctx))
		assert.NotContains(t, py.PipCalls("install")[0], "--index-url")
	})

	t.Run("offline", func(t *testing.T) {
		py := testutil.NewFakePython()
		py.IndexReachable = false
		err := New(py, testutil.FakePythonPath, testIndex).Upgrade(ctx)
		assert.ErrorIs(t, err, ErrNetwork)

		var exitErr *executor.ExitError
		assert.True(t, errors.As(err, &exitErr))
	})
}

func TestInstallBinaryOnly(t *testing.T) {
	ctx := testutil.Context(t)

	t.Run("all wheels available", func(t *testing.T) {
		py := testutil.NewFakePython()
		py.Index["requests==2.31.0"] = testutil.Wheel{Name: "requests", Version: "2.31.0"}
		py.Index["fastapi==0.110.0"] = testutil.Wheel{Name: "fastapi", Version: "0.110.0"}
		dir := t.TempDir()
		path := testutil.WriteManifest(t, dir, "requests==2.31.0", "fastapi==0.110.0")

		require.NoError(t, New(py, testutil.FakePythonPath, testIndex).InstallBinaryOnly(ctx, path))
		assert.Equal(t, "2.31.0", py.Installed["requests"])
		assert.Equal(t, "0.110.0", py.Installed["fastapi"])

		calls := py.PipCalls("install")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"install", OnlyBinaryAll, "-r", path, "--index-url", testIndex, "--disable-pip-version-check", "--no-input"}, calls[0])

		last := py.Calls[len(py.Calls)-1]
		assert.Equal(t, dir, last.Dir)
		assert.Contains(t, last.Env, "PIP_NO_COLOR=1")
	})

	t.Run("follows includes", func(t *testing.T) {
		py := testutil.NewFakePython()
		py.Index["requests==2.31.0"] = testutil.Wheel{Name: "requests", Version: "2.31.0"}
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "base.txt"), []byte("requests==2.31.0\n"), 0644))
		path := testutil.WriteManifest(t, dir, "-r base.txt")

		require.NoError(t, New(py, testutil.FakePythonPath, testIndex).InstallBinaryOnly(ctx, path))
		assert.Equal(t, "2.31.0", py.Installed["requests"])
	})

	t.Run("conflict is not a missing artifact", func(t *testing.T) {
		py := testutil.NewFakePython()
		py.Index["fastapi==0.110.0"] = testutil.Wheel{Name: "fastapi", Version: "0.110.0"}
		py.Index["pydantic==1.10.14"] = testutil.Wheel{Name: "pydantic", Version: "1.10.14"}
		py.Conflict = "fastapi 0.110.0 depends on pydantic!=1.8,!=1.8.1,!=2.0.0,!=2.0.1,!=2.1.0,<3.0.0 and >=1.7.4"
		path := testutil.WriteManifest(t, t.TempDir(), "fastapi==0.110.0", "pydantic==1.10.14")

		err := New(py, testutil.FakePythonPath, testIndex).InstallBinaryOnly(ctx, path)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoBinaryArtifact)
		assert.NotErrorIs(t, err, ErrNetwork)
		assert.ErrorContains(t, err, "ResolutionImpossible")
		assert.Zero(t, py.InstallCount)
	})

	t.Run("missing wheel installs nothing", func(t *testing.T) {
		py := testutil.NewFakePython()
		py.Index["requests==2.31.0"] = testutil.Wheel{Name: "requests", Version: "2.31.0"}
		path := testutil.WriteManifest(t, t.TempDir(), "requests==2.31.0", "nonexistent-pkg==9.9.9")

		err := New(py, testutil.FakePythonPath, testIndex).InstallBinaryOnly(ctx, path)
		require.ErrorIs(t, err, ErrNoBinaryArtifact)
		assert.ErrorContains(t, err, "nonexistent-pkg==9.9.9")
		assert.NotContains(t, py.Installed, "requests")
		assert.NotContains(t, py.Installed, "nonexistent-pkg")
	})
}

func TestClassify(t *testing.T) {
	plain := errors.New("exec: permission denied")
	assert.Same(t, plain, classify(plain))

	other := &executor.ExitError{Command: "python3 -m pip install", ExitCode: 1, Stderr: "ERROR: Failed building wheel for uvloop"}
	assert.Same(t, error(other), classify(other))

	conflict := &executor.ExitError{Command: "python3 -m pip install", ExitCode: 1, Stderr: "ERROR: ResolutionImpossible: for help visit ..."}
	assert.Same(t, error(conflict), classify(conflict))

	missing := &executor.ExitError{Command: "python3 -m pip install", ExitCode: 1, Stderr: "ERROR: No matching distribution found for psycopg2==2.9.9"}
	assert.ErrorIs(t, classify(missing), ErrNoBinaryArtifact)
	assert.ErrorContains(t, classify(missing), "psycopg2==2.9.9")
}
