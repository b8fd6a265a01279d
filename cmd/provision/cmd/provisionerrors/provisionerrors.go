// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisionerrors

import (
	"errors"
	"fmt"
)

// Kind is the error category surfaced to the operator
type Kind string

const (
	EnvironmentError Kind = "EnvironmentError"
	NotFoundError    Kind = "NotFoundError"
	ResolutionError  Kind = "ResolutionError"
	UnknownError     Kind = "UnknownError"
)

const (
	RuntimeNotFound        = "RUNTIME_NOT_FOUND"
	IndexUnreachable       = "INDEX_UNREACHABLE"
	InstallerUpgradeFailed = "INSTALLER_UPGRADE_FAILED"
	ManifestNotFound       = "MANIFEST_NOT_FOUND"
	MalformedManifest      = "MALFORMED_MANIFEST"
	NoBinaryArtifact       = "NO_BINARY_ARTIFACT"
	InstallFailed          = "INSTALL_FAILED"
	Unsatisfied            = "UNSATISFIED"
	Unknown                = "UNKNOWN_ERROR"
)

type ProvisionError struct {
	Kind  Kind
	Code  string
	Cause error
}

func (p *ProvisionError) Error() string {
	if p.Cause != nil {
		return fmt.Sprintf("%s %s: %s", p.Kind, p.Code, p.Cause.Error())
	}
	return fmt.Sprintf("%s %s", p.Kind, p.Code)
}

// Is matches another *ProvisionError with the same Kind, and the same Code unless target's is empty,
// so that errors.Is(err, &ProvisionError{Kind: NotFoundError}) works
func (p *ProvisionError) Is(target error) bool {
	t, ok := target.(*ProvisionError)
	if !ok {
		return false
	}
	return t.Kind == p.Kind && (t.Code == "" || t.Code == p.Code)
}

func (p *ProvisionError) MarshalYAML() (interface{}, error) {
	var causeStr string
	if p.Cause != nil {
		causeStr = p.Cause.Error()
	}
	return map[string]interface{}{
		"kind":  string(p.Kind),
		"code":  p.Code,
		"cause": causeStr,
	}, nil
}

func (p *ProvisionError) Unwrap() error {
	return p.Cause
}

var _ error = (*ProvisionError)(nil)

func NewRuntimeNotFoundError(cause error) *ProvisionError {
	return &ProvisionError{Kind: EnvironmentError, Code: RuntimeNotFound, Cause: cause}
}

func NewIndexUnreachableError(cause error) *ProvisionError {
	return &ProvisionError{Kind: EnvironmentError, Code: IndexUnreachable, Cause: cause}
}

func NewInstallerUpgradeError(cause error) *ProvisionError {
	return &ProvisionError{Kind: EnvironmentError, Code: InstallerUpgradeFailed, Cause: cause}
}

func NewManifestNotFoundError(cause error) *ProvisionError {
	return &ProvisionError{Kind: NotFoundError, Code: ManifestNotFound, Cause: cause}
}

func NewMalformedManifestError(cause error) *ProvisionError {
	return &ProvisionError{Kind: ResolutionError, Code: MalformedManifest, Cause: cause}
}

func NewNoBinaryArtifactError(cause error) *ProvisionError {
	return &ProvisionError{Kind: ResolutionError, Code: NoBinaryArtifact, Cause: cause}
}

func NewInstallFailedError(cause error) *ProvisionError {
	return &ProvisionError{Kind: ResolutionError, Code: InstallFailed, Cause: cause}
}

func NewUnsatisfiedError(cause error) *ProvisionError {
	return &ProvisionError{Kind: ResolutionError, Code: Unsatisfied, Cause: cause}
}

func NewUnknownError(cause error) *ProvisionError {
	return &ProvisionError{Kind: UnknownError, Code: Unknown, Cause: cause}
}

func Standardize(err error) *ProvisionError {
	if err == nil {
		return nil
	}

	var provErr *ProvisionError
	if errors.As(err, &provErr) {
		return provErr
	}

	return NewUnknownError(err)
}
