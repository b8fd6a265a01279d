// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	provision "quickcart.com/x/provisioner/cmd/provision/cmd"
	"quickcart.com/x/provisioner/pkg/invocation"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	run(ctx, &invocation.Invocation{
		Stderr: os.Stderr,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
		ExitFn: os.Exit,
		OsArgs: os.Args,
	})
}

// run executes one invocation, reporting failure through inv.ExitFn.
// ExitFn may return (it does in tests), so run never continues past it
func run(ctx context.Context, inv *invocation.Invocation) {
	cmd, err := provision.RootCmd(ctx, inv)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err.Error())
		inv.ExitFn(1)
		return
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		inv.ExitFn(1)
	}
}
