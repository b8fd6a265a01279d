// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/juju/fslock"
)

const lockPollInterval = 100 * time.Millisecond

// WithEnvironmentLock runs action while holding the lockfile guarding the
// provisioned environment. It blocks until the lock is obtained or ctx is done,
// logging once if another provisioning run currently holds it.
//
// The lock is released when action returns, and by the OS if the process dies.
func WithEnvironmentLock(ctx context.Context, lockFilePath string, action func(ctx context.Context) error) error {
	if err := EnsureDirs(filepath.Dir(lockFilePath)); err != nil {
		return err
	}

	lock := fslock.New(lockFilePath)
	if err := lock.TryLock(); errors.Is(err, fslock.ErrLocked) {
		slog.Info("another provisioning run holds the environment lock, waiting", "lock", lockFilePath)
		if err := waitForLock(ctx, lock); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failure while releasing environment lock", "file", lockFilePath, "err", err.Error())
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return action(ctx)
}

// waitForLock polls since fslock has no context-aware Lock
func waitForLock(ctx context.Context, lock *fslock.Lock) error {
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := lock.TryLock(); err == nil {
			return nil
		} else if !errors.Is(err, fslock.ErrLocked) {
			return err
		}
	}
}
