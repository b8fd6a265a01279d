// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionconfig

const envVarPrefix = "PROVISION_"

const (
	// ProvisionHomeEnvVar
	// PROVISION_HOME is the absolute path to the provisioner's state directory
	// (install lock and provision-config.yaml)
	// 	default: $HOME/.provision
	ProvisionHomeEnvVar = envVarPrefix + "HOME"

	// LogLevelEnvVar
	// PROVISION_LOG_LEVEL sets the log level.
	// 	Default: info
	//  Possible values: debug info warn error
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// PythonEnvVar
	// PROVISION_PYTHON overrides the interpreter whose environment is provisioned.
	// Either a bare name looked up on PATH or a path to an executable
	PythonEnvVar = envVarPrefix + "PYTHON"

	// ManifestEnvVar
	// PROVISION_MANIFEST overrides the manifest path.
	// 	default: requirements.txt in the working directory
	ManifestEnvVar = envVarPrefix + "MANIFEST"

	// IndexURLEnvVar
	// PROVISION_INDEX_URL overrides the package index pip installs from
	IndexURLEnvVar = envVarPrefix + "INDEX_URL"

	// SkipIndexProbeEnvVar
	// PROVISION_SKIP_INDEX_PROBE disables the reachability check done before upgrading the installer
	SkipIndexProbeEnvVar = envVarPrefix + "SKIP_INDEX_PROBE"

	// NetrcEnvVar
	// PROVISION_NETRC points at the netrc file used to authenticate the index probe.
	// 	default: $HOME/.netrc
	NetrcEnvVar = envVarPrefix + "NETRC"
)
