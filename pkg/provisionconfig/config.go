// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-yaml"
	"quickcart.com/x/provisioner/pkg/buildinfo"
	"quickcart.com/x/provisioner/pkg/utils"
)

type Config struct {
	HomePath     string `yaml:"-"`
	LockFilePath string `yaml:"-"`

	// Python is either a bare executable name (looked up on PATH) or a path.
	// Empty means the first of DefaultPythonCandidates found on PATH
	Python string `yaml:"python,omitempty"`

	// ManifestPath defaults to requirements.txt in the working directory
	ManifestPath string `yaml:"manifest,omitempty"`

	IndexURL       string `yaml:"index-url,omitempty"`
	SkipIndexProbe bool   `yaml:"skip-index-probe,omitempty"`
	// ProbeTimeout is a Go duration string, e.g. "10s"
	ProbeTimeout string `yaml:"probe-timeout,omitempty"`
	NetrcPath    string `yaml:"netrc,omitempty"`
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath)
}

// ProbeTimeoutDuration returns the parsed probe timeout, or DefaultProbeTimeout when unset
func (c *Config) ProbeTimeoutDuration() (time.Duration, error) {
	if c.ProbeTimeout == "" {
		return DefaultProbeTimeout, nil
	}
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid probe-timeout %q: %w", c.ProbeTimeout, err)
	}
	return d, nil
}

// AbsoluteManifestPath resolves the manifest path against the working directory
func (c *Config) AbsoluteManifestPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return utils.ResolvePath(cwd, c.ManifestPath), nil
}

func Get() (*Config, error) {
	homePath, err := getProvisionHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(homePath)
}

func GetWithCustomHome(homePath string) (*Config, error) {
	config := Config{}

	// provision-config.yaml is optional
	configFilePath := filepath.Join(homePath, ProvisionConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", ProvisionConfigFileName, err)
		}
	}

	if python, ok := os.LookupEnv(PythonEnvVar); ok {
		config.Python = python
	}

	if manifest, ok := os.LookupEnv(ManifestEnvVar); ok {
		config.ManifestPath = manifest
	}
	if config.ManifestPath == "" {
		config.ManifestPath = ManifestFilename
	}

	if indexURL, ok := os.LookupEnv(IndexURLEnvVar); ok {
		config.IndexURL = indexURL
	}
	if config.IndexURL == "" {
		config.IndexURL = DefaultIndexURL
	}

	skipProbe, ok, err := utils.BoolEnvVar(SkipIndexProbeEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.SkipIndexProbe = skipProbe
	}

	if netrcPath, ok := os.LookupEnv(NetrcEnvVar); ok {
		config.NetrcPath = netrcPath
	}

	if _, err := config.ProbeTimeoutDuration(); err != nil {
		return nil, err
	}

	config.HomePath = homePath
	config.LockFilePath = filepath.Join(homePath, LockFileName)
	return &config, nil
}

func getProvisionHomePath() (string, error) {
	if v, ok := os.LookupEnv(ProvisionHomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory("provision")
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}

func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", ProvisionerUserAgentPrefix, buildinfo.GetProvisionerVersion())
}
