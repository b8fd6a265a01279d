// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pip

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"quickcart.com/x/provisioner/pkg/manifest"
)

// InstalledSet maps normalized project names to installed versions
type InstalledSet map[string]string

func (s InstalledSet) Version(name string) (string, bool) {
	v, ok := s[manifest.NormalizeName(name)]
	return v, ok
}

type listedPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Installed lists the packages installed in the interpreter's environment
func (i *Installer) Installed(ctx context.Context) (InstalledSet, error) {
	result, err := i.runner.Run(ctx, i.command(true, "list", "--format=json"))
	if err != nil {
		return nil, err
	}
	return parseList(result.Stdout)
}

// parseList decodes `pip list --format=json`; JSON is a subset of YAML so the YAML decoder reads it as is
func parseList(out string) (InstalledSet, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return InstalledSet{}, nil
	}

	var pkgs []listedPackage
	if err := yaml.Unmarshal([]byte(out), &pkgs); err != nil {
		return nil, fmt.Errorf("unrecognized pip list output: %w", err)
	}

	return lo.SliceToMap(pkgs, func(p listedPackage) (string, string) {
		return manifest.NormalizeName(p.Name), p.Version
	}), nil
}
