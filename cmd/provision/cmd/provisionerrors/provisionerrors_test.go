// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionerrors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := NewManifestNotFoundError(fmt.Errorf("open requirements.txt: %w", os.ErrNotExist))
	assert.Equal(t, "NotFoundError MANIFEST_NOT_FOUND: open requirements.txt: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, "ResolutionError UNSATISFIED", (&ProvisionError{Kind: ResolutionError, Code: Unsatisfied}).Error())
}

func TestIsByKind(t *testing.T) {
	wrapped := fmt.Errorf("upgrading installer: %w", NewIndexUnreachableError(errors.New("dial tcp: connection refused")))

	assert.ErrorIs(t, wrapped, &ProvisionError{Kind: EnvironmentError})
	assert.ErrorIs(t, wrapped, &ProvisionError{Kind: EnvironmentError, Code: IndexUnreachable})
	assert.NotErrorIs(t, wrapped, &ProvisionError{Kind: EnvironmentError, Code: InstallerUpgradeFailed})
	assert.NotErrorIs(t, wrapped, &ProvisionError{Kind: ResolutionError})
}

func TestStandardize(t *testing.T) {
	assert.Nil(t, Standardize(nil))

	known := NewNoBinaryArtifactError(errors.New("no wheel for psycopg2==2.9.9"))
	assert.Same(t, known, Standardize(fmt.Errorf("ctx: %w", known)))

	unknown := Standardize(errors.New("boom"))
	assert.Equal(t, UnknownError, unknown.Kind)
	assert.Equal(t, Unknown, unknown.Code)
}

func TestMarshalYaml(t *testing.T) {
	data, err := yaml.Marshal(NewInstallFailedError(errors.New("pip exited with code 2")))
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string{
		"kind":  "ResolutionError",
		"code":  "INSTALL_FAILED",
		"cause": "pip exited with code 2",
	}, decoded)
}
