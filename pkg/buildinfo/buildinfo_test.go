// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		assert.Equal(t, VersionInfo{Version: "unknown", Build: "unknown", BuildDate: "unknown"}, Get())
	})

	t.Run("populated", func(t *testing.T) {
		ProvisionerVersion, Build, BuildDate = "1.2.3", "abc123", "2026-01-02"
		t.Cleanup(func() { ProvisionerVersion, Build, BuildDate = "", "", "" })

		assert.Equal(t, VersionInfo{Version: "1.2.3", Build: "abc123", BuildDate: "2026-01-02"}, Get())
		assert.Equal(t, "1.2.3", GetProvisionerVersion())
	})
}
