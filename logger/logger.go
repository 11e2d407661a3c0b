// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package logger contains slog logger setup helpers shared by the registry
// services.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to w with the given level. An
// unrecognized level text results in a non-nil error.
func New(w io.Writer, levelText string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return nil, err
	}

	logHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(logHandler), nil
}

// ExitWithError exits the program with the given exit code. It is meant to be
// deferred from main so that deferred cleanups above it still run.
func ExitWithError(exitCode *int) {
	os.Exit(*exitCode)
}
