// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package middleware provides service decorators for logging, metrics and
// tracing.
package middleware
