// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"quickcart.com/x/provisioner/cmd/provision/cmd/check"
	"quickcart.com/x/provisioner/cmd/provision/cmd/version"
	"quickcart.com/x/provisioner/pkg/buildinfo"
	"quickcart.com/x/provisioner/pkg/builtincommand"
	"quickcart.com/x/provisioner/pkg/invocation"
	"quickcart.com/x/provisioner/pkg/logging"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
)

const ProvisionName = "provision"

func RootCmd(ctx context.Context, inv *invocation.Invocation) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   ProvisionName,
		Short: "install the backend's Python dependencies from prebuilt wheels",
		Long: `provision reports the Python version, upgrades pip and installs
every requirement of the manifest (requirements.txt by default) from binary
wheels only. Running it again on a conforming environment changes nothing.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	defer inv.SetOutputStreams(cmd)

	if len(inv.OsArgs) == 0 {
		return nil, fmt.Errorf("Invocation.OsArgs must contain at least one entry similar to os.Args")
	}
	cmd.SetArgs(inv.OsArgs[1:])

	if err := logging.InitLoggingTo(inv.Stderr); err != nil {
		return nil, err
	}

	config, err := provisionconfig.Get()
	if err != nil {
		return nil, err
	}
	// only a provisioning run writes to the state dir
	if !builtincommand.IsBuiltinCommand(inv.OsArgs) {
		if err := config.EnsureDirs(); err != nil {
			return nil, err
		}
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := inv.Provisioner(config, cmd)
		if err != nil {
			return err
		}
		_, err = p.Run(cmd.Context())
		return err
	}

	cmd.AddCommand(
		check.Cmd(config, inv),
		version.Cmd(),
	)

	v, err := yaml.Marshal(buildinfo.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(v)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}
