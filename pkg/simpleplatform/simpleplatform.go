// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package simpleplatform

import (
	"fmt"
	"runtime"
)

// Platform identifies the OS/architecture pair binary artifacts must be built for
type Platform struct {
	// OS specifies the operating system, for example `linux` or `windows`.
	OS string

	// Architecture field specifies the CPU architecture, for example
	// `amd64` or `arm64`.
	Architecture string
}

func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Architecture)
}

var wheelOS = map[string]string{
	"linux":   "manylinux",
	"darwin":  "macosx",
	"windows": "win",
}

var wheelArch = map[string]string{
	"amd64": "x86_64",
	"386":   "i686",
	"arm64": "aarch64",
}

// WheelTagHint approximates the platform part of the wheel tags pip looks for,
// e.g. "manylinux_*_x86_64". It only makes resolution errors easier to read
func (p *Platform) WheelTagHint() string {
	osTag, ok := wheelOS[p.OS]
	if !ok {
		osTag = p.OS
	}
	arch, ok := wheelArch[p.Architecture]
	if !ok {
		arch = p.Architecture
	}
	switch {
	case p.OS == "darwin" && p.Architecture == "arm64":
		arch = "arm64"
	case p.OS == "windows" && p.Architecture == "amd64":
		return "win_amd64"
	case p.OS == "windows" && p.Architecture == "386":
		return "win32"
	}
	return fmt.Sprintf("%s_*_%s", osTag, arch)
}

func CurrentPlatform() *Platform {
	return &Platform{OS: runtime.GOOS, Architecture: runtime.GOARCH}
}
