// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"quickcart.com/x/provisioner/pkg/buildinfo"
	"quickcart.com/x/provisioner/pkg/builtincommand"
)

func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   string(builtincommand.Version),
		Short: "show the provisioner's version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(buildinfo.Get())
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}
