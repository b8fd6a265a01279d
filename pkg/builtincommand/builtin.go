// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package builtincommand

import (
	"github.com/samber/lo"
)

type BuiltinCommand string

const (
	Check   BuiltinCommand = "check"
	Version BuiltinCommand = "version"
	Help    BuiltinCommand = "help"
)

var BuiltinCommands = []BuiltinCommand{Check, Version, Help}

// IsBuiltinCommand is true when args (shaped like os.Args) name a subcommand rather than a provisioning run
func IsBuiltinCommand(args []string) bool {
	if len(args) > 1 {
		elems := lo.Map(BuiltinCommands, func(item BuiltinCommand, _ int) string {
			return string(item)
		})
		return lo.Contains(elems, args[1])
	}
	return false
}
