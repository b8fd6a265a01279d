// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"strings"
)

type Operator string

const (
	Equal             Operator = "=="
	NotEqual          Operator = "!="
	GreaterOrEqual    Operator = ">="
	LessOrEqual       Operator = "<="
	Greater           Operator = ">"
	Less              Operator = "<"
	Compatible        Operator = "~="
	ArbitraryEquality Operator = "==="
)

type Specifier struct {
	Op      Operator
	Version string
}

func (s Specifier) String() string {
	return string(s.Op) + s.Version
}

func (s Specifier) wildcard() bool {
	return strings.HasSuffix(s.Version, ".*")
}

func (s Specifier) validate() error {
	if s.Op == ArbitraryEquality {
		return nil
	}
	if strings.Contains(s.Version, "*") {
		if s.Op != Equal && s.Op != NotEqual {
			return fmt.Errorf("wildcard only allowed with == and != in %q", s.String())
		}
		if !s.wildcard() || strings.Count(s.Version, "*") != 1 {
			return fmt.Errorf("wildcard must be a trailing '.*' in %q", s.String())
		}
		prefix, err := ParseVersion(strings.TrimSuffix(s.Version, ".*"))
		if err != nil {
			return fmt.Errorf("unsupported wildcard in %q: %w", s.String(), err)
		}
		if prefix.PreKind != "" || prefix.IsPostrelease() || prefix.Dev >= 0 || len(prefix.Local) > 0 {
			return fmt.Errorf("unsupported wildcard in %q: prefix must be a plain release", s.String())
		}
		return nil
	}

	v, err := ParseVersion(s.Version)
	if err != nil {
		return err
	}
	if len(v.Local) > 0 && s.Op != Equal && s.Op != NotEqual {
		return fmt.Errorf("local version label only allowed with == and != in %q", s.String())
	}
	if s.Op == Compatible && len(v.Release) < 2 {
		return fmt.Errorf("~= requires at least two release segments in %q", s.String())
	}
	return nil
}

// Contains reports whether installed satisfies the specifier. Installed
// pre-releases are accepted like any other version, as pip does for
// packages that are already present
func (s Specifier) Contains(installed string) (bool, error) {
	if s.Op == ArbitraryEquality {
		return strings.EqualFold(strings.TrimSpace(installed), s.Version), nil
	}

	v, err := ParseVersion(installed)
	if err != nil {
		return false, err
	}

	if s.wildcard() {
		prefix, err := ParseVersion(strings.TrimSuffix(s.Version, ".*"))
		if err != nil {
			return false, err
		}
		match := v.hasReleasePrefix(prefix.Epoch, prefix.Release)
		return match == (s.Op == Equal), nil
	}

	spec, err := ParseVersion(s.Version)
	if err != nil {
		return false, err
	}
	public := v.Public()

	switch s.Op {
	case Equal, NotEqual:
		// a local label on the installed version is ignored unless the specifier names one
		candidate := public
		if len(spec.Local) > 0 {
			candidate = v
		}
		return (candidate.Compare(spec) == 0) == (s.Op == Equal), nil
	case GreaterOrEqual:
		return public.Compare(spec) >= 0, nil
	case LessOrEqual:
		return public.Compare(spec) <= 0, nil
	case Less:
		// <1.0 excludes 1.0rc1 unless the specifier itself is a pre-release
		if public.Compare(spec) >= 0 {
			return false, nil
		}
		return spec.IsPrerelease() || !v.IsPrerelease() || !v.sameBase(spec), nil
	case Greater:
		// >1.0 excludes 1.0.post1 unless the specifier itself is a post release
		if public.Compare(spec) <= 0 {
			return false, nil
		}
		if len(v.Local) > 0 && v.sameBase(spec) {
			return false, nil
		}
		return spec.IsPostrelease() || !v.IsPostrelease() || !v.sameBase(spec), nil
	case Compatible:
		// ~=X.Y.Z means >=X.Y.Z together with ==X.Y.*
		if public.Compare(spec) < 0 {
			return false, nil
		}
		return v.hasReleasePrefix(spec.Epoch, spec.Release[:len(spec.Release)-1]), nil
	}
	return false, fmt.Errorf("unsupported operator %q", s.Op)
}

// SatisfiedBy reports whether installedVersion meets every specifier of the entry.
// An entry without specifiers accepts any version
func (e *Entry) SatisfiedBy(installedVersion string) (bool, error) {
	for _, s := range e.Specifiers {
		ok, err := s.Contains(installedVersion)
		if err != nil {
			return false, fmt.Errorf("checking %s against %q: %w", s.String(), installedVersion, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
