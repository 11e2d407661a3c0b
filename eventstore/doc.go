// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package eventstore defines the persistence contracts of the registry: the
// append-only per-thing event log and the snapshot store that bounds replay
// length on entity recovery.
package eventstore
