// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	home := t.TempDir()
	clearEnv(t)

	c, err := GetWithCustomHome(home)
	require.NoError(t, err)

	assert.Equal(t, home, c.HomePath)
	assert.Equal(t, filepath.Join(home, LockFileName), c.LockFilePath)
	assert.Equal(t, ManifestFilename, c.ManifestPath)
	assert.Equal(t, DefaultIndexURL, c.IndexURL)
	assert.Empty(t, c.Python)
	assert.False(t, c.SkipIndexProbe)

	d, err := c.ProbeTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, DefaultProbeTimeout, d)
}

func TestConfigFileAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	clearEnv(t)

	contents := `
python: /opt/py/bin/python3.11
manifest: deps/requirements.txt
index-url: https://mirror.example.com/simple/
probe-timeout: 3s
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ProvisionConfigFileName), []byte(contents), 0644))

	t.Run("file only", func(t *testing.T) {
		c, err := GetWithCustomHome(home)
		require.NoError(t, err)
		assert.Equal(t, "/opt/py/bin/python3.11", c.Python)
		assert.Equal(t, "deps/requirements.txt", c.ManifestPath)
		assert.Equal(t, "https://mirror.example.com/simple/", c.IndexURL)
		d, err := c.ProbeTimeoutDuration()
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, d)
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(PythonEnvVar, "python3.12")
		t.Setenv(ManifestEnvVar, "other.txt")
		t.Setenv(IndexURLEnvVar, "http://localhost:8080/simple/")
		t.Setenv(SkipIndexProbeEnvVar, "true")

		c, err := GetWithCustomHome(home)
		require.NoError(t, err)
		assert.Equal(t, "python3.12", c.Python)
		assert.Equal(t, "other.txt", c.ManifestPath)
		assert.Equal(t, "http://localhost:8080/simple/", c.IndexURL)
		assert.True(t, c.SkipIndexProbe)
	})
}

func TestInvalidValues(t *testing.T) {
	clearEnv(t)

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv(SkipIndexProbeEnvVar, "sometimes")
		_, err := GetWithCustomHome(t.TempDir())
		assert.ErrorContains(t, err, SkipIndexProbeEnvVar)
	})

	t.Run("bad duration", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, ProvisionConfigFileName), []byte("probe-timeout: soon\n"), 0644))
		_, err := GetWithCustomHome(home)
		assert.ErrorContains(t, err, "probe-timeout")
	})

	t.Run("config is a directory", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(home, ProvisionConfigFileName), 0755))
		_, err := GetWithCustomHome(home)
		assert.ErrorContains(t, err, "is directory")
	})
}

func TestHomeFromEnv(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv(ProvisionHomeEnvVar, home)

	c, err := Get()
	require.NoError(t, err)
	assert.Equal(t, home, c.HomePath)
}

func clearEnv(t *testing.T) {
	for _, k := range []string{PythonEnvVar, ManifestEnvVar, IndexURLEnvVar, SkipIndexProbeEnvVar, NetrcEnvVar} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
