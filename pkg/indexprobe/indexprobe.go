// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package indexprobe checks that the package index answers before the
// provisioner asks pip to talk to it. pip itself retries and degrades
// silently when offline, so the probe is what turns "no network" into a
// clear, fatal error.
package indexprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/jdx/go-netrc"
)

var ErrUnreachable = errors.New("package index unreachable")

type Prober struct {
	client    *http.Client
	netrcPath string
	userAgent string
}

// New returns a Prober. An empty netrcPath means $HOME/.netrc
func New(timeout time.Duration, netrcPath, userAgent string) *Prober {
	return &Prober{
		client:    &http.Client{Timeout: timeout},
		netrcPath: netrcPath,
		userAgent: userAgent,
	}
}

// Probe issues a GET to indexURL and fails unless it answers with a 2xx
func (p *Prober) Probe(ctx context.Context, indexURL string) error {
	u, err := url.Parse(indexURL)
	if err != nil {
		return fmt.Errorf("%w: invalid index url %q: %w", ErrUnreachable, indexURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported index url scheme %q", ErrUnreachable, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/vnd.pypi.simple.v1+json, text/html;q=0.1")

	if u.User == nil {
		login, password, ok, err := p.credentials(u.Hostname())
		if err != nil {
			return err
		}
		if ok {
			req.SetBasicAuth(login, password)
		}
	}

	slog.DebugContext(ctx, "probing package index", "url", u.Redacted())
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s answered %s", ErrUnreachable, u.Redacted(), resp.Status)
	}
	return nil
}

// credentials looks up host in the netrc file; a missing file is not an error
func (p *Prober) credentials(host string) (login, password string, ok bool, err error) {
	path := p.netrcPath
	if path == "" {
		usr, err := user.Current()
		if err != nil {
			return "", "", false, nil
		}
		path = filepath.Join(usr.HomeDir, ".netrc")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", "", false, nil
	}

	n, err := netrc.Parse(path)
	if err != nil {
		return "", "", false, fmt.Errorf("reading netrc %q: %w", path, err)
	}

	machine := n.Machine(host)
	if machine == nil {
		return "", "", false, nil
	}
	login = machine.Get("login")
	if login == "" {
		return "", "", false, nil
	}
	slog.Debug("using netrc credentials for package index", "host", host, "login", login)
	return login, machine.Get("password"), true, nil
}
