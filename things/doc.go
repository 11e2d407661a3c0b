// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package things contains the digital-twin domain model: the Thing aggregate
// with its features, attributes and authorization data, copy-on-write
// builders, schema-version-aware JSON projection, entity tags and merge-patch
// support.
package things
