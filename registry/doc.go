// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the mutation/query core of the thing registry:
// a strategy per command kind decides, given the current thing state and an
// incoming command, which event must be recorded, which response must be sent
// and which lifecycle transition must follow. Strategies are wrapped by the
// conditional-header evaluator and the entity-tag appender, and yield a
// Result that the hosting entity applies.
package registry
