// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	provision "quickcart.com/x/provisioner/cmd/provision/cmd"
	"quickcart.com/x/provisioner/pkg/invocation"
	"quickcart.com/x/provisioner/pkg/provisionconfig"
	"quickcart.com/x/provisioner/pkg/utils"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	if err := getDocsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func getDocsCmd() *cobra.Command {
	var format string

	docsCmd := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate the provision CLI reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if format != "md" && format != "man" {
				return fmt.Errorf("only --format md or --format man are supported")
			}

			if err := genDocs(cmd.Context(), dir, format); err != nil {
				cmd.SilenceUsage = true
				return err
			}

			cmd.Printf("successfully generated at %s\n", dir)
			return nil
		},
	}

	docsCmd.Flags().StringVar(&format, "format", "", "(required) md or man")
	_ = docsCmd.MarkFlagRequired("format")

	return docsCmd
}

func genDocs(ctx context.Context, dir, format string) error {
	// keep the generator away from the operator's real state dir
	tmp, deleteFn, err := utils.MkdirTemp("", "")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()
	if err := os.Setenv(provisionconfig.ProvisionHomeEnvVar, tmp); err != nil {
		return err
	}

	inv := &invocation.Invocation{Stdout: os.Stdout, Stderr: os.Stderr, OsArgs: []string{provision.ProvisionName}}
	root, err := provision.RootCmd(ctx, inv)
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	if err := utils.EnsureDirs(dir); err != nil {
		return err
	}

	if format == "man" {
		return doc.GenManTree(root, &doc.GenManHeader{Title: "PROVISION", Section: "1"}, dir)
	}
	return doc.GenMarkdownTreeCustom(root, dir, prependFrontMatter, func(s string) string {
		return s
	})
}

// add a Jekyll/Just-the-Docs front-matter block
func prependFrontMatter(filename string) string {
	cmdKey := strings.TrimSuffix(filepath.Base(filename), ".md")
	title := strings.ReplaceAll(cmdKey, "_", " ")
	return fmt.Sprintf(`---
layout: default
title: %s
parent: CLI reference
---

`, title)
}
