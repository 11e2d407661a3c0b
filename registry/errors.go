// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import "github.com/absmach/registry/pkg/errors"

var (
	// ErrNotAccessible indicates that the addressed thing or sub-resource
	// does not exist or is not visible to the caller.
	ErrNotAccessible = errors.New("addressed resource not accessible")

	// ErrConflict indicates a create against an already live thing.
	ErrConflict = errors.New("thing with the given id already exists")

	// ErrInvalid indicates a structurally invalid payload.
	ErrInvalid = errors.New("invalid payload")

	// ErrPreconditionFailed indicates a conditional header that does not
	// match the current entity tag.
	ErrPreconditionFailed = errors.New("precondition header does not match the current entity tag")

	// ErrPreconditionNotModified indicates an If-None-Match matching the
	// current entity tag on a read command.
	ErrPreconditionNotModified = errors.New("entity not modified for the given precondition header")

	// ErrSchemaNotSupported indicates an operation unsupported for the
	// command's or the entity's schema version.
	ErrSchemaNotSupported = errors.New("operation not supported for the schema version")

	// ErrPolicyIDMissing indicates a policy-bearing operation without a
	// policy id.
	ErrPolicyIDMissing = errors.New("policy id missing")

	// ErrACLNotAllowed indicates an inline ACL on a policy-based thing.
	ErrACLNotAllowed = errors.New("inline acl not allowed for policy-based things")

	// ErrSizeLimitExceeded indicates that the resulting serialized thing
	// would exceed the configured size budget.
	ErrSizeLimitExceeded = errors.New("resulting thing exceeds the maximal allowed size")

	// ErrNotApplicable indicates a command that was legitimately dropped
	// without effect, either because no strategy is registered for its kind
	// or because the entity's state rules it out silently.
	ErrNotApplicable = errors.New("command not applicable to the entity")

	// ErrUnhandled indicates a command that reached a strategy which
	// structurally cannot process it. This is a programming error, not a
	// user one.
	ErrUnhandled = errors.New("command cannot be processed by the resolved strategy")
)
