// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quickcart.com/x/provisioner/pkg/manifest"
	"quickcart.com/x/provisioner/pkg/pip"
)

func readManifest(t *testing.T, lines string) *manifest.Manifest {
	m, err := manifest.ReadContents("requirements.txt", []byte(lines))
	require.NoError(t, err)
	return m
}

func TestCheck(t *testing.T) {
	m := readManifest(t, `requests==2.31.0
fastapi==0.110.0
SQLAlchemy>=2.0,<2.1
uvloop==0.19.0 ; sys_platform != "win32"
cloudinary
`)
	installed := pip.InstalledSet{
		"requests":   "2.31.0",
		"fastapi":    "0.109.2",
		"sqlalchemy": "2.0.28",
	}

	r, err := Check(m, installed)
	require.NoError(t, err)

	statuses := make([]Status, 0, len(r.Entries))
	for _, e := range r.Entries {
		statuses = append(statuses, e.Status)
	}
	assert.Equal(t, []Status{Satisfied, Mismatch, Satisfied, Conditional, Missing}, statuses)
	assert.Equal(t, "0.109.2", r.Entries[1].Installed)

	assert.False(t, r.Conforms())
	assert.False(t, r.Acceptable())
	assert.Len(t, r.Unsatisfied(), 2)
	assert.Equal(t, 2, r.Count(Satisfied))

	table := r.Table()
	assert.Contains(t, table, "fastapi==0.110.0")
	assert.Contains(t, table, "0.109.2")
	assert.Contains(t, table, "mismatch")
}

func TestConformsAndAcceptable(t *testing.T) {
	m := readManifest(t, "requests==2.31.0\nuvloop==0.19.0 ; sys_platform != \"win32\"\n")

	t.Run("conditional not installed", func(t *testing.T) {
		r, err := Check(m, pip.InstalledSet{"requests": "2.31.0"})
		require.NoError(t, err)
		assert.False(t, r.Conforms())
		assert.True(t, r.Acceptable())
	})

	t.Run("everything installed", func(t *testing.T) {
		r, err := Check(m, pip.InstalledSet{"requests": "2.31.0", "uvloop": "0.19.0"})
		require.NoError(t, err)
		assert.True(t, r.Conforms())
		assert.True(t, r.Acceptable())
	})

	t.Run("empty manifest", func(t *testing.T) {
		r, err := Check(readManifest(t, ""), pip.InstalledSet{})
		require.NoError(t, err)
		assert.True(t, r.Conforms())
	})
}

func TestCheckUnparseableInstalledVersion(t *testing.T) {
	_, err := Check(readManifest(t, "requests>=2\n"), pip.InstalledSet{"requests": "not-a-version"})
	assert.ErrorContains(t, err, "requests>=2")
}
