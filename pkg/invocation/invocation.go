// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package invocation

import (
	"io"
	"log/slog"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"quickcart.com/x/provisioner/pkg/executor"
	"quickcart.com/x/provisioner/pkg/indexprobe"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
	"quickcart.com/x/provisioner/pkg/provisioner"
)

// Invocation is one execution of the provision binary
type Invocation struct {
	Stderr, Stdout io.Writer
	Stdin          io.Reader
	ExitFn         func(exitCode int)
	// must contain at least one argument, namely the binary name, similar to os.Args
	OsArgs []string

	// Runner replaces the process runner, nil means real child processes
	Runner executor.Runner
	// Prober replaces the HTTP index probe
	Prober provisioner.Prober
}

func (inv *Invocation) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(inv.Stdout)
	cmd.SetErr(inv.Stderr)
	cmd.SetIn(inv.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		inv.SetOutputStreams(sub)
	})
}

func (inv *Invocation) CommandRunner() executor.Runner {
	if inv.Runner != nil {
		return inv.Runner
	}
	return executor.New(slog.Default())
}

func (inv *Invocation) IndexProber(config *provisionconfig.Config) (provisioner.Prober, error) {
	if inv.Prober != nil {
		return inv.Prober, nil
	}
	timeout, err := config.ProbeTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return indexprobe.New(timeout, config.NetrcPath, provisionconfig.GetUserAgent()), nil
}

// Provisioner wires a provisioner printing to cmd's output streams
func (inv *Invocation) Provisioner(config *provisionconfig.Config, cmd *cobra.Command) (*provisioner.Provisioner, error) {
	prober, err := inv.IndexProber(config)
	if err != nil {
		return nil, err
	}
	return provisioner.New(config, inv.CommandRunner(), prober, cmd), nil
}
