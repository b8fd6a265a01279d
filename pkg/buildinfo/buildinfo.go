// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildinfo

// To be populated at build-time, e.g.:
// go build -ldflags "-X 'quickcart.com/x/provisioner/pkg/buildinfo.ProvisionerVersion=1.2.3'"
var (
	ProvisionerVersion string
	Build              string
	BuildDate          string
)

type VersionInfo struct {
	Version   string `yaml:"version"`
	Build     string `yaml:"build"`
	BuildDate string `yaml:"buildDate"`
}

func defaultUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func Get() VersionInfo {
	return VersionInfo{
		Version:   defaultUnknown(ProvisionerVersion),
		Build:     defaultUnknown(Build),
		BuildDate: defaultUnknown(BuildDate),
	}
}

func GetProvisionerVersion() string {
	return defaultUnknown(ProvisionerVersion)
}
