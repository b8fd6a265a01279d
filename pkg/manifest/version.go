// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
)

var (
	pep440Regex = regexp.MustCompile(`(?i)^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
		`(?:[-_.]?(a|alpha|b|beta|c|rc|pre|preview)[-_.]?(\d*))?` +
		`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d*)))?` +
		`(?:[-_.]?(dev)[-_.]?(\d*))?` +
		`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

	preReleaseNames = map[string]string{
		"a": "a", "alpha": "a",
		"b": "b", "beta": "b",
		"c": "rc", "rc": "rc", "pre": "rc", "preview": "rc",
	}
	preReleaseRank = map[string]int{"a": 0, "b": 1, "rc": 2}

	localSeparators = regexp.MustCompile(`[-_.]`)
)

// Version is a PEP 440 version
type Version struct {
	Epoch   int
	Release []int
	// PreKind is "a", "b" or "rc", empty for anything but a pre-release
	PreKind string
	PreNum  int
	// Post and Dev are -1 when absent
	Post  int
	Dev   int
	Local []string
}

// ParseVersion parses any spelling PEP 440 accepts, e.g. "1.0-RC.1" or "2!1.0.post2.dev3+ubuntu.1"
func ParseVersion(s string) (*Version, error) {
	g := pep440Regex.FindStringSubmatch(strings.TrimSpace(s))
	if g == nil {
		return nil, fmt.Errorf("invalid version %q", s)
	}

	v := &Version{Post: -1, Dev: -1}
	var err error
	if g[1] != "" {
		if v.Epoch, err = strconv.Atoi(g[1]); err != nil {
			return nil, fmt.Errorf("invalid epoch in version %q", s)
		}
	}
	for _, segment := range strings.Split(g[2], ".") {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("invalid release segment in version %q", s)
		}
		v.Release = append(v.Release, n)
	}

	if g[3] != "" {
		v.PreKind = preReleaseNames[strings.ToLower(g[3])]
		if v.PreNum, err = atoiOrZero(g[4]); err != nil {
			return nil, fmt.Errorf("invalid pre-release number in version %q", s)
		}
	}

	switch {
	case g[5] != "":
		v.Post, err = strconv.Atoi(g[5])
	case g[6] != "":
		v.Post, err = atoiOrZero(g[7])
	}
	if err != nil {
		return nil, fmt.Errorf("invalid post-release number in version %q", s)
	}

	if g[8] != "" {
		if v.Dev, err = atoiOrZero(g[9]); err != nil {
			return nil, fmt.Errorf("invalid dev-release number in version %q", s)
		}
	}

	if g[10] != "" {
		v.Local = localSeparators.Split(strings.ToLower(g[10]), -1)
	}
	return v, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// String renders the normalized form
func (v *Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	b.WriteString(strings.Join(lo.Map(v.Release, func(n int, _ int) string {
		return strconv.Itoa(n)
	}), "."))
	if v.PreKind != "" {
		fmt.Fprintf(&b, "%s%d", v.PreKind, v.PreNum)
	}
	if v.Post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.Dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	if len(v.Local) > 0 {
		b.WriteString("+" + strings.Join(v.Local, "."))
	}
	return b.String()
}

func (v *Version) IsPrerelease() bool {
	return v.PreKind != "" || v.Dev >= 0
}

func (v *Version) IsPostrelease() bool {
	return v.Post >= 0
}

// Public is v without its local label
func (v *Version) Public() *Version {
	p := *v
	p.Local = nil
	return &p
}

// sameBase reports whether v and o share epoch and release, ignoring trailing zeros
func (v *Version) sameBase(o *Version) bool {
	return v.Epoch == o.Epoch && compareRelease(v.Release, o.Release) == 0
}

// Compare orders versions the way pip does: epoch, release (trailing zeros
// ignored), then dev < pre < final < post, and finally the local label
func (v *Version) Compare(o *Version) int {
	if c := cmp.Compare(v.Epoch, o.Epoch); c != 0 {
		return c
	}
	if c := compareRelease(v.Release, o.Release); c != 0 {
		return c
	}
	vRank, vNum := v.preKey()
	oRank, oNum := o.preKey()
	if c := cmp.Compare(vRank, oRank); c != 0 {
		return c
	}
	if c := cmp.Compare(vNum, oNum); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Post, o.Post); c != 0 {
		return c
	}
	if c := cmp.Compare(v.devKey(), o.devKey()); c != 0 {
		return c
	}
	return compareLocal(v.Local, o.Local)
}

// preKey sorts a bare dev release (1.0.dev1) before every pre-release of the same
// release and a final release after them
func (v *Version) preKey() (int, int) {
	switch {
	case v.PreKind != "":
		return preReleaseRank[v.PreKind], v.PreNum
	case v.Post < 0 && v.Dev >= 0:
		return -1, 0
	default:
		return math.MaxInt, 0
	}
}

func (v *Version) devKey() int {
	if v.Dev < 0 {
		return math.MaxInt
	}
	return v.Dev
}

func compareRelease(a, b []int) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		if c := cmp.Compare(segmentAt(a, i), segmentAt(b, i)); c != 0 {
			return c
		}
	}
	return 0
}

func segmentAt(release []int, i int) int {
	if i < len(release) {
		return release[i]
	}
	return 0
}

// compareLocal: no label sorts first, numeric segments sort after alphanumeric ones
func compareLocal(a, b []string) int {
	return slices.CompareFunc(a, b, func(x, y string) int {
		xn, xErr := strconv.Atoi(x)
		yn, yErr := strconv.Atoi(y)
		switch {
		case xErr == nil && yErr == nil:
			return cmp.Compare(xn, yn)
		case xErr == nil:
			return 1
		case yErr == nil:
			return -1
		default:
			return strings.Compare(x, y)
		}
	})
}

// hasReleasePrefix reports whether v's release starts with prefix, padding v with zeros
func (v *Version) hasReleasePrefix(epoch int, prefix []int) bool {
	if v.Epoch != epoch {
		return false
	}
	for i, n := range prefix {
		if segmentAt(v.Release, i) != n {
			return false
		}
	}
	return true
}

// Semver converts v to a semantic version for reporting. Only versions semver
// represents without loss convert: no epoch, at most three release segments,
// no post release and no local label
func (v *Version) Semver() (*semver.Version, error) {
	if v.Epoch != 0 || len(v.Release) > 3 || v.IsPostrelease() || len(v.Local) > 0 {
		return nil, fmt.Errorf("version %s has no semantic version equivalent", v.String())
	}

	release := make([]string, 3)
	for i := range release {
		release[i] = strconv.Itoa(segmentAt(v.Release, i))
	}

	var pre []string
	if v.PreKind != "" {
		pre = append(pre, fmt.Sprintf("%s%d", v.PreKind, v.PreNum))
	}
	if v.Dev >= 0 {
		pre = append(pre, fmt.Sprintf("dev%d", v.Dev))
	}

	s := strings.Join(release, ".")
	if len(pre) > 0 {
		s += "-" + strings.Join(pre, ".")
	}
	return semver.NewVersion(s)
}

// ToSemver parses a PEP 440 version and converts it with Version.Semver.
// Interpreter and pip versions go through here; requirement matching uses Version directly
func ToSemver(version string) (*semver.Version, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}
	return v.Semver()
}
