// Copyright (c) 2026 Hellomouse. All rights reserved.

package perm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Ordering(t *testing.T) {
	require.True(t, Owner.AtLeast(Edit))
	require.True(t, Edit.AtLeast(SelfEdit))
	require.False(t, View.AtLeast(Interact))
}

func TestCanEditChild(t *testing.T) {
	assert.True(t, CanEditChild(Owner, "alice", "bob"))
	assert.True(t, CanEditChild(Edit, "alice", "bob"))
	assert.True(t, CanEditChild(SelfEdit, "alice", "alice"))
	assert.False(t, CanEditChild(SelfEdit, "alice", "bob"))
	assert.False(t, CanEditChild(Interact, "alice", "alice"))
}

// Scenario 1: Owner share then editor demote.
func TestApplyEditorRestrictions_OwnerDemoteAttemptByEdit(t *testing.T) {
	existing := map[string]Level{"alice": Owner, "bob": Edit}
	submitted := map[string]Level{"alice": View, "bob": Edit}
	users := map[string]bool{"alice": true, "bob": true}

	effective := ApplyEditorRestrictions(Edit, "bob", submitted, existing, "alice", users)

	assert.Equal(t, Owner, effective["alice"])
	assert.Equal(t, Edit, effective["bob"])
}

// Scenario 2: Editor grant Owner denied.
func TestApplyEditorRestrictions_EditCannotGrantOwner(t *testing.T) {
	existing := map[string]Level{"alice": Owner, "bob": Edit}
	submitted := map[string]Level{"carol": Owner}
	users := map[string]bool{"alice": true, "bob": true, "carol": true}

	effective := ApplyEditorRestrictions(Edit, "bob", submitted, existing, "alice", users)

	assert.Equal(t, Edit, effective["carol"])
	assert.Equal(t, Owner, effective["alice"])
}

func TestApplyEditorRestrictions_OwnerMayGrantOwner(t *testing.T) {
	existing := map[string]Level{"alice": Owner}
	submitted := map[string]Level{"carol": Owner}
	users := map[string]bool{"alice": true, "carol": true}

	effective := ApplyEditorRestrictions(Owner, "alice", submitted, existing, "alice", users)

	assert.Equal(t, Owner, effective["carol"])
}

func TestApplyEditorRestrictions_UnknownUsersDropped(t *testing.T) {
	existing := map[string]Level{"alice": Owner}
	submitted := map[string]Level{"ghost": Edit}
	users := map[string]bool{"alice": true}

	effective := ApplyEditorRestrictions(Owner, "alice", submitted, existing, "alice", users)

	_, present := effective["ghost"]
	assert.False(t, present)
}

// Permission lists replace wholesale, so an Edit caller silently dropping
// an existing Edit/Owner from the submission counts as a lowering too.
func TestApplyEditorRestrictions_EditCannotOmitExistingOwner(t *testing.T) {
	existing := map[string]Level{"alice": Owner, "bob": Edit, "carol": Edit, "dave": View}
	submitted := map[string]Level{"bob": Edit}
	users := map[string]bool{"alice": true, "bob": true, "carol": true, "dave": true}

	effective := ApplyEditorRestrictions(Edit, "bob", submitted, existing, "alice", users)

	assert.Equal(t, Owner, effective["alice"])
	assert.Equal(t, Edit, effective["carol"])
	_, present := effective["dave"]
	assert.False(t, present, "sub-Edit rows may be dropped by an Edit caller")
}

func TestApplyEditorRestrictions_CreatorAlwaysOwner(t *testing.T) {
	existing := map[string]Level{"alice": Owner}
	submitted := map[string]Level{"alice": View}
	users := map[string]bool{"alice": true}

	effective := ApplyEditorRestrictions(Owner, "alice", submitted, existing, "alice", users)

	assert.Equal(t, Owner, effective["alice"])
}
