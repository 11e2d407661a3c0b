// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"encoding/json"

	"github.com/absmach/registry/pkg/errors"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ErrMerge indicates a merge patch that cannot be applied.
var ErrMerge = errors.New("failed to apply merge patch")

// MergePatch applies an RFC-7396 merge patch, anchored at the given pointer,
// onto the thing document. A null value at a path removes that path. The
// thing's identity, revision, lifecycle and timestamps are never affected by
// the patch.
func (t Thing) MergePatch(pointer string, patch []byte) (Thing, error) {
	if !json.Valid(patch) {
		return Thing{}, errors.Wrap(ErrMerge, errors.New("patch is not valid json"))
	}

	original, err := t.ToJSON(V2)
	if err != nil {
		return Thing{}, errors.Wrap(ErrMerge, err)
	}

	full, err := nestPatch(pointer, patch)
	if err != nil {
		return Thing{}, errors.Wrap(ErrMerge, err)
	}

	merged, err := jsonpatch.MergePatch(original, full)
	if err != nil {
		return Thing{}, errors.Wrap(ErrMerge, err)
	}

	patched, err := FromJSON(merged)
	if err != nil {
		return Thing{}, errors.Wrap(ErrMerge, err)
	}

	// Only document fields are patchable.
	patched.ID = t.ID
	patched.SchemaVersion = t.SchemaVersion
	patched.Lifecycle = t.Lifecycle
	patched.Revision = t.Revision
	patched.Created = t.Created
	patched.Modified = t.Modified
	if patched.PolicyID == "" {
		patched.PolicyID = t.PolicyID
	}

	return patched, nil
}

// nestPatch wraps the patch value into objects so that it applies at the
// pointer's path instead of the document root.
func nestPatch(pointer string, patch []byte) ([]byte, error) {
	if isRootPointer(pointer) {
		return patch, nil
	}

	tokens := pointerTokens(pointer)
	nested := any(json.RawMessage(patch))
	for i := len(tokens) - 1; i >= 0; i-- {
		nested = map[string]any{tokens[i]: nested}
	}

	return json.Marshal(nested)
}
