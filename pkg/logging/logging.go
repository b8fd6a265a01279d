// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"quickcart.com/x/provisioner/pkg/provisionconfig"
)

// InitLoggingTo installs the default slog logger writing to w,
// at the level given by PROVISION_LOG_LEVEL (info when unset)
func InitLoggingTo(w io.Writer) error {
	logLevel, ok := os.LookupEnv(provisionconfig.LogLevelEnvVar)
	if !ok || logLevel == "" {
		return initLogging(w, "info")
	}
	return initLogging(w, logLevel)
}

func initLogging(w io.Writer, logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid value for '%s' env var: %w", provisionconfig.LogLevelEnvVar, err)
	}

	slogHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}
