// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
)

func TestInitLogging(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Run("debug enabled", func(t *testing.T) {
		t.Setenv(provisionconfig.LogLevelEnvVar, "debug")
		var buf bytes.Buffer
		require.NoError(t, InitLoggingTo(&buf))

		slog.Debug("step", "state", "VersionReported")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "state=VersionReported")
	})

	t.Run("default level hides debug", func(t *testing.T) {
		t.Setenv(provisionconfig.LogLevelEnvVar, "")
		var buf bytes.Buffer
		require.NoError(t, InitLoggingTo(&buf))

		slog.Debug("hidden")
		slog.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Setenv(provisionconfig.LogLevelEnvVar, "chatty")
		assert.ErrorContains(t, InitLoggingTo(&bytes.Buffer{}), provisionconfig.LogLevelEnvVar)
	})
}
