// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads the pip requirements file that pins the backend's
// dependency set. It understands the subset of the format the provisioner
// needs to reason about: names, extras, version specifiers and markers.
// Option lines (-r, --index-url, ...) are kept verbatim and left to pip.
package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var ErrMalformedManifest = errors.New("malformed manifest")

type Manifest struct {
	// Path is the absolute path the manifest was read from
	Path    string
	Entries []*Entry
	// Options are pip option lines such as "--extra-index-url ...", in file order
	Options []string
}

type Entry struct {
	// Name is the PEP 503 normalized project name
	Name string
	// RawName is the name as written in the manifest
	RawName    string
	Extras     []string
	Specifiers []Specifier
	// Marker is the environment marker after ';', without the ';'
	Marker string
	Line   int
}

func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString(e.RawName)
	if len(e.Extras) > 0 {
		b.WriteString("[" + strings.Join(e.Extras, ",") + "]")
	}
	b.WriteString(strings.Join(lo.Map(e.Specifiers, func(s Specifier, _ int) string {
		return s.String()
	}), ","))
	return b.String()
}

var (
	nameRegex       = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)
	normalizeRegex  = regexp.MustCompile(`[-_.]+`)
	specifierRegex  = regexp.MustCompile(`^(===|~=|==|!=|<=|>=|<|>)\s*([A-Za-z0-9.*+!_-]+)$`)
	extraNameRegex  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	commentStartsAt = regexp.MustCompile(`(^|\s)#`)
)

// NormalizeName applies PEP 503 normalization so that "Flask_SQLAlchemy" and "flask-sqlalchemy" compare equal
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRegex.ReplaceAllString(name, "-"))
}

// Read reads and parses the manifest at path.
// A missing file yields an error satisfying errors.Is(err, os.ErrNotExist)
func Read(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadContents(abs, contents)
}

func ReadContents(path string, contents []byte) (*Manifest, error) {
	m := &Manifest{Path: path}
	seen := map[string]int{}

	lines, err := logicalLines(contents)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		text := stripComment(l.text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "-") {
			m.Options = append(m.Options, text)
			continue
		}

		entry, err := parseEntry(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %s", ErrMalformedManifest, filepath.Base(path), l.number, err.Error())
		}
		entry.Line = l.number

		if first, ok := seen[entry.Name]; ok {
			return nil, fmt.Errorf("%w: %s:%d: %q is already listed on line %d", ErrMalformedManifest, filepath.Base(path), l.number, entry.RawName, first)
		}
		seen[entry.Name] = l.number
		m.Entries = append(m.Entries, entry)
	}

	return m, nil
}

// indexOptions only change where pip looks for artifacts, never which requirements it installs
var indexOptions = []string{
	"-i", "--index-url", "--extra-index-url", "--no-index",
	"-f", "--find-links", "--trusted-host",
	"--only-binary", "--no-binary", "--prefer-binary", "--pre",
}

// OpaqueOptions returns the option lines that add requirements Entries does not
// describe, such as "-r base.txt", "-c constraints.txt" or "-e ./lib".
// A manifest with any of them can only be judged by running pip
func (m *Manifest) OpaqueOptions() []string {
	return lo.Reject(m.Options, func(option string, _ int) bool {
		return lo.Contains(indexOptions, optionName(option))
	})
}

// optionName extracts "--index-url" from "--index-url=https://..." or "--index-url https://..."
func optionName(option string) string {
	name, _, _ := strings.Cut(option, "=")
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	// short options may be glued to their value: "-rbase.txt"
	if len(name) > 2 && name[0] == '-' && name[1] != '-' {
		name = name[:2]
	}
	return name
}

type logicalLine struct {
	number int
	text   string
}

// logicalLines joins backslash continuations; number is the line the logical line starts on
func logicalLines(contents []byte) ([]logicalLine, error) {
	var result []logicalLine
	scanner := bufio.NewScanner(bytes.NewReader(contents))

	var pending strings.Builder
	start, n := 0, 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if pending.Len() == 0 {
			start = n
		}
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		result = append(result, logicalLine{number: start, text: pending.String()})
		pending.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		result = append(result, logicalLine{number: start, text: pending.String()})
	}
	return result, nil
}

func stripComment(line string) string {
	if loc := commentStartsAt.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}
	return strings.TrimSpace(line)
}

func parseEntry(text string) (*Entry, error) {
	requirement, marker, _ := strings.Cut(text, ";")
	requirement = strings.TrimSpace(requirement)

	if strings.Contains(requirement, "://") || strings.Contains(requirement, " @ ") {
		return nil, fmt.Errorf("direct references are not supported: %q", requirement)
	}

	groups := nameRegex.FindStringSubmatch(requirement)
	if groups == nil {
		return nil, fmt.Errorf("invalid requirement %q", requirement)
	}

	entry := &Entry{
		Name:    NormalizeName(groups[1]),
		RawName: groups[1],
		Marker:  strings.TrimSpace(marker),
	}

	if groups[2] != "" {
		for _, extra := range strings.Split(groups[2], ",") {
			extra = strings.TrimSpace(extra)
			if !extraNameRegex.MatchString(extra) {
				return nil, fmt.Errorf("invalid extra %q in %q", extra, requirement)
			}
			entry.Extras = append(entry.Extras, extra)
		}
	}

	specs, err := parseSpecifiers(groups[3])
	if err != nil {
		return nil, fmt.Errorf("%s in %q", err.Error(), requirement)
	}
	entry.Specifiers = specs
	return entry, nil
}

func parseSpecifiers(s string) ([]Specifier, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, nil
	}

	var specs []Specifier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		groups := specifierRegex.FindStringSubmatch(part)
		if groups == nil {
			return nil, fmt.Errorf("invalid version specifier %q", part)
		}
		spec := Specifier{Op: Operator(groups[1]), Version: groups[2]}
		if err := spec.validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
