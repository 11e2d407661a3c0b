// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"strings"

	"github.com/absmach/registry/pkg/errors"
	"github.com/xeipuuv/gojsonpointer"
)

// ErrPointer indicates a malformed or non-addressable JSON pointer.
var ErrPointer = errors.New("invalid json pointer")

// getAtPointer returns the value addressed by an RFC-6901 pointer within a
// JSON-shaped map. A missing path yields pkg/errors.ErrNotFound.
func getAtPointer(doc map[string]any, pointer string) (any, error) {
	if isRootPointer(pointer) {
		return nil, ErrPointer
	}
	p, err := gojsonpointer.NewJsonPointer(pointer)
	if err != nil {
		return nil, errors.Wrap(ErrPointer, err)
	}

	val, _, err := p.Get(anyMap(doc))
	if err != nil {
		return nil, errors.Wrap(errors.ErrNotFound, err)
	}

	return val, nil
}

// setAtPointer returns a deep copy of doc with the value at the pointer
// replaced. Missing intermediate objects are created; non-object
// intermediates are overwritten by objects.
func setAtPointer(doc map[string]any, pointer string, value any) (map[string]any, error) {
	if isRootPointer(pointer) {
		return nil, ErrPointer
	}
	p, err := gojsonpointer.NewJsonPointer(pointer)
	if err != nil {
		return nil, errors.Wrap(ErrPointer, err)
	}

	cp := copyValueMap(doc)
	if cp == nil {
		cp = map[string]any{}
	}

	tokens := pointerTokens(pointer)
	parent := cp
	for _, token := range tokens[:len(tokens)-1] {
		child, ok := parent[token].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[token] = child
		}
		parent = child
	}

	if _, err := p.Set(anyMap(cp), copyValue(value)); err != nil {
		return nil, errors.Wrap(ErrPointer, err)
	}

	return cp, nil
}

// deleteAtPointer returns a deep copy of doc with the value at the pointer
// removed. A missing path yields pkg/errors.ErrNotFound.
func deleteAtPointer(doc map[string]any, pointer string) (map[string]any, error) {
	if isRootPointer(pointer) {
		return nil, ErrPointer
	}
	p, err := gojsonpointer.NewJsonPointer(pointer)
	if err != nil {
		return nil, errors.Wrap(ErrPointer, err)
	}

	if _, _, err := p.Get(anyMap(doc)); err != nil {
		return nil, errors.Wrap(errors.ErrNotFound, err)
	}

	cp := copyValueMap(doc)
	if _, err := p.Delete(anyMap(cp)); err != nil {
		return nil, errors.Wrap(ErrPointer, err)
	}

	return cp, nil
}

func isRootPointer(pointer string) bool {
	return pointer == "" || pointer == "/"
}

// pointerTokens splits an RFC-6901 pointer into unescaped reference tokens.
func pointerTokens(pointer string) []string {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	tokens := make([]string, len(parts))
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		tokens[i] = part
	}

	return tokens
}

// anyMap widens the map type so that pointer operations can descend into it.
func anyMap(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
