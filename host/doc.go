// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package host runs the registry entities. Each live thing is served by a
// single-writer loop that recovers state from the snapshot store plus the
// event log tail, dispatches commands through the registry and applies the
// resulting events, responses and lifecycle transitions in order.
package host
