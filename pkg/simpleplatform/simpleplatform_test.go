// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package simpleplatform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWheelTagHint(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{Platform{OS: "linux", Architecture: "amd64"}, "manylinux_*_x86_64"},
		{Platform{OS: "linux", Architecture: "arm64"}, "manylinux_*_aarch64"},
		{Platform{OS: "darwin", Architecture: "arm64"}, "macosx_*_arm64"},
		{Platform{OS: "darwin", Architecture: "amd64"}, "macosx_*_x86_64"},
		{Platform{OS: "windows", Architecture: "amd64"}, "win_amd64"},
		{Platform{OS: "windows", Architecture: "386"}, "win32"},
		{Platform{OS: "freebsd", Architecture: "amd64"}, "freebsd_*_x86_64"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.platform.WheelTagHint(), tt.platform.String())
	}
}

func TestCurrentPlatform(t *testing.T) {
	p := CurrentPlatform()
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, p.String())
}
