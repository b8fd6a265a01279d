// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package check

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"quickcart.com/x/provisioner/cmd/provision/cmd/provisionerrors"
	"quickcart.com/x/provisioner/pkg/builtincommand"
	"quickcart.com/x/provisioner/pkg/conformance"
	"quickcart.com/x/provisioner/pkg/invocation"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
)

type checkOutput struct {
	Runtime  string                     `yaml:"runtime"`
	Manifest string                     `yaml:"manifest"`
	Entries  []*conformance.EntryStatus `yaml:"entries"`
}

func Cmd(config *provisionconfig.Config, inv *invocation.Invocation) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Check),
		Short: "compare installed packages against the manifest without installing anything",
		Long: `compare installed packages against the manifest without installing anything

	exits non-zero when a requirement is missing or installed at a version
	outside its constraint.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, err := config.AbsoluteManifestPath()
			if err != nil {
				return err
			}

			p, err := inv.Provisioner(config, cmd)
			if err != nil {
				return err
			}
			report, err := p.Check(cmd.Context(), manifestPath)
			if err != nil {
				return err
			}

			switch output {
			case "table":
				cmd.Printf("%s, manifest %s\n", p.Interpreter().String(), manifestPath)
				cmd.Println(report.Table())
			case "yaml":
				data, err := yaml.Marshal(checkOutput{
					Runtime:  p.Interpreter().Reported,
					Manifest: manifestPath,
					Entries:  report.Entries,
				})
				if err != nil {
					return err
				}
				cmd.Print(string(data))
			default:
				return fmt.Errorf("output format not supported: %s", output)
			}

			if !report.Acceptable() {
				return provisionerrors.NewUnsatisfiedError(
					fmt.Errorf("%d of %d requirements unsatisfied", len(report.Unsatisfied()), len(report.Entries)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, yaml")
	return cmd
}
