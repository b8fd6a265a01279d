// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
	"quickcart.com/x/provisioner/pkg/utils"
)

// WriteManifest writes a requirements file with one entry per line into dir and returns its path
func WriteManifest(t *testing.T, dir string, entries ...string) string {
	p := filepath.Join(dir, provisionconfig.ManifestFilename)
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(entries, "\n")+"\n"), 0644))
	return p
}

// Chdir switches the working directory for the duration of the test
func Chdir(t *testing.T, dir string) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(cwd)) })
}

type CommonSetupSuite struct {
	suite.Suite
}

func (suite *CommonSetupSuite) SetupTest() {
	// set PROVISION_HOME to a randomized temp dir before every test,
	// otherwise, the provisioner will use the same, default ~/.provision across tests.
	tmpHome, deleteFn, err := utils.MkdirTemp("", "")
	suite.Require().NoError(err)

	t := suite.T()
	t.Setenv(provisionconfig.ProvisionHomeEnvVar, tmpHome)
	t.Setenv(provisionconfig.SkipIndexProbeEnvVar, "true")
	for _, k := range []string{provisionconfig.PythonEnvVar, provisionconfig.ManifestEnvVar, provisionconfig.IndexURLEnvVar} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() {
		_ = deleteFn()
	})
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}
