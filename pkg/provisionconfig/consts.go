// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionconfig

import "time"

const (
	ManifestFilename        = "requirements.txt"
	ProvisionConfigFileName = "provision-config.yaml"
	LockFileName            = ".lock"
	DefaultIndexURL         = "https://pypi.org/simple/"
	DefaultProbeTimeout     = 10 * time.Second

	ProvisionerUserAgentPrefix = "provision"
)

// DefaultPythonCandidates are tried in order when no interpreter is configured
var DefaultPythonCandidates = []string{"python3", "python"}
