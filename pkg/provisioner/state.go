// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package provisioner

import "fmt"

// State is the provisioning run's position in
// Start -> VersionReported -> InstallerUpgraded -> DependenciesInstalled, with Failed reachable from any of them
type State string

const (
	Start                 State = "Start"
	VersionReported       State = "VersionReported"
	InstallerUpgraded     State = "InstallerUpgraded"
	DependenciesInstalled State = "DependenciesInstalled"
	Failed                State = "Failed"
)

var next = map[State]State{
	Start:             VersionReported,
	VersionReported:   InstallerUpgraded,
	InstallerUpgraded: DependenciesInstalled,
}

func (s State) String() string {
	return string(s)
}

// advance returns the state following s, failing on terminal states
func (s State) advance() (State, error) {
	n, ok := next[s]
	if !ok {
		return s, fmt.Errorf("no transition out of terminal state %s", s)
	}
	return n, nil
}
