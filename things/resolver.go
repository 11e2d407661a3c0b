// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

// Attribute returns the attribute value addressed by the given pointer.
func (t Thing) Attribute(pointer string) (any, error) {
	return getAtPointer(t.Attributes, pointer)
}

// Feature returns the feature with the given id.
func (t Thing) Feature(id string) (Feature, bool) {
	f, ok := t.Features[id]
	return f, ok
}

// AclEntry returns the permissions granted to the given subject.
func (t Thing) AclEntry(subject string) (Permissions, bool) {
	perms, ok := t.ACL[subject]
	return perms, ok
}

// Property returns the feature property addressed by the given pointer.
func (f Feature) Property(pointer string) (any, error) {
	return getAtPointer(f.Properties, pointer)
}

// DesiredProperty returns the desired property addressed by the given pointer.
func (f Feature) DesiredProperty(pointer string) (any, error) {
	return getAtPointer(f.DesiredProperties, pointer)
}
