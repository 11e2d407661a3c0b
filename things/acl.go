// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"github.com/absmach/registry/pkg/errors"
)

// Permission is a single right a subject holds on a thing in the deprecated
// v1 authorization model.
type Permission string

const (
	// Read allows reading the thing and its sub-resources.
	Read Permission = "READ"
	// Write allows mutating the thing and its sub-resources.
	Write Permission = "WRITE"
	// Administrate allows changing the thing's ACL itself.
	Administrate Permission = "ADMINISTRATE"
)

// MinRequiredPermissions is the permission set at least one subject must
// hold in full for an ACL to be accepted.
var MinRequiredPermissions = Permissions{Read, Write, Administrate}

// ErrInvalidACL indicates an ACL that leaves no subject with the minimum
// required permission set.
var ErrInvalidACL = errors.New("acl must grant READ, WRITE and ADMINISTRATE to at least one subject")

// Permissions is the set of rights granted to a single subject.
type Permissions []Permission

// Contains reports whether the set includes the given permission.
func (p Permissions) Contains(perm Permission) bool {
	for _, candidate := range p {
		if candidate == perm {
			return true
		}
	}

	return false
}

// ContainsAll reports whether the set includes every given permission.
func (p Permissions) ContainsAll(perms Permissions) bool {
	for _, perm := range perms {
		if !p.Contains(perm) {
			return false
		}
	}

	return true
}

// ACL maps authorization subjects to their permissions (v1 schema only).
type ACL map[string]Permissions

// Copy returns a deep copy of the ACL.
func (a ACL) Copy() ACL {
	if a == nil {
		return nil
	}
	cp := make(ACL, len(a))
	for subject, perms := range a {
		cp[subject] = append(Permissions(nil), perms...)
	}

	return cp
}

// Validate enforces the minimum-permission invariant: at least one subject
// must hold the full minimum required permission set.
func (a ACL) Validate() error {
	for _, perms := range a {
		if perms.ContainsAll(MinRequiredPermissions) {
			return nil
		}
	}

	return ErrInvalidACL
}

// WithEntry returns a copy of the ACL with the subject's permissions set.
func (a ACL) WithEntry(subject string, perms Permissions) ACL {
	cp := a.Copy()
	if cp == nil {
		cp = ACL{}
	}
	cp[subject] = append(Permissions(nil), perms...)

	return cp
}

// WithoutEntry returns a copy of the ACL with the subject removed.
func (a ACL) WithoutEntry(subject string) ACL {
	cp := a.Copy()
	delete(cp, subject)

	return cp
}
