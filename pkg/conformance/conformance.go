// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"quickcart.com/x/provisioner/pkg/manifest"
	"quickcart.com/x/provisioner/pkg/pip"
)

type Status string

const (
	Satisfied Status = "satisfied"
	Missing   Status = "missing"
	Mismatch  Status = "mismatch"
	// Conditional entries carry an environment marker and are not installed.
	// Whether they apply is only known to pip, which evaluates the marker
	Conditional Status = "conditional"
)

type EntryStatus struct {
	Entry     *manifest.Entry `yaml:"-"`
	Name      string          `yaml:"name"`
	Required  string          `yaml:"required"`
	Installed string          `yaml:"installed,omitempty"`
	Status    Status          `yaml:"status"`
}

type Report struct {
	Entries []*EntryStatus `yaml:"entries"`
}

// Check compares every manifest entry against the installed set
func Check(m *manifest.Manifest, installed pip.InstalledSet) (*Report, error) {
	r := &Report{}
	for _, e := range m.Entries {
		s := &EntryStatus{
			Entry:    e,
			Name:     e.Name,
			Required: e.String(),
		}

		v, ok := installed.Version(e.Name)
		switch {
		case !ok && e.Marker != "":
			s.Status = Conditional
		case !ok:
			s.Status = Missing
		default:
			s.Installed = v
			sat, err := e.SatisfiedBy(v)
			if err != nil {
				return nil, fmt.Errorf("checking %s against installed %s: %w", e.String(), v, err)
			}
			s.Status = lo.Ternary(sat, Satisfied, Mismatch)
		}
		r.Entries = append(r.Entries, s)
	}
	return r, nil
}

// Conforms is true when every entry is known to be satisfied, so installing would change nothing
func (r *Report) Conforms() bool {
	return lo.EveryBy(r.Entries, func(s *EntryStatus) bool {
		return s.Status == Satisfied
	})
}

// Acceptable is true when nothing is missing or mismatched; conditional entries are tolerated
// since pip already decided whether their marker applies
func (r *Report) Acceptable() bool {
	return len(r.Unsatisfied()) == 0
}

func (r *Report) Unsatisfied() []*EntryStatus {
	return lo.Filter(r.Entries, func(s *EntryStatus, _ int) bool {
		return s.Status == Missing || s.Status == Mismatch
	})
}

func (r *Report) Count(status Status) int {
	return lo.CountBy(r.Entries, func(s *EntryStatus) bool {
		return s.Status == status
	})
}

func (r *Report) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Rows(lo.Map(r.Entries, func(s *EntryStatus, _ int) []string {
			indicator := ""
			status := string(s.Status)

			switch s.Status {
			case Satisfied:
				indicator = "✓"
				status = lipgloss.NewStyle().
					Foreground(lipgloss.Color("2")).
					Render(status)
			case Missing, Mismatch:
				indicator = "✗"
				status = lipgloss.NewStyle().
					Foreground(lipgloss.Color("1")).
					Bold(true).
					Render(status)
			case Conditional:
				status = lipgloss.NewStyle().
					Faint(true).
					Italic(true).
					Render(status)
			}

			return []string{
				indicator,
				s.Required,
				lo.Ternary(s.Installed == "", "-", s.Installed),
				status,
			}
		})...).
		String()
}
