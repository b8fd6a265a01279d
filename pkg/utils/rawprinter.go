// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RawPrinter is the operator-facing output stream. *cobra.Command satisfies it
type RawPrinter interface {
	Println(i ...interface{})
	Printf(format string, i ...interface{})
	PrintErrln(i ...interface{})
}

// WriterPrinter prints to plain writers, for use outside of a cobra command
type WriterPrinter struct {
	Out, Err io.Writer
}

func (w WriterPrinter) Println(i ...interface{}) {
	fmt.Fprintln(w.Out, i...)
}

func (w WriterPrinter) Printf(format string, i ...interface{}) {
	fmt.Fprintf(w.Out, format, i...)
}

func (w WriterPrinter) PrintErrln(i ...interface{}) {
	fmt.Fprintln(w.Err, i...)
}

var _ RawPrinter = WriterPrinter{}
var _ RawPrinter = (*cobra.Command)(nil)
