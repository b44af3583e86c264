package access

import (
	"fmt"
	"testing"

	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

const (
	actorID = "actor-1"
	otherID = "someone-else"
)

// scenario is an ownership situation of a resource relative to the actor
type scenario string

const (
	owned   scenario = "owned"
	foreign scenario = "foreign"
)

func resourceFor(kind Kind, s scenario) Resource {
	res := Resource{Kind: kind, ID: "res-1", CreatedByUserID: actorID}
	if s == owned {
		res.PatientUserID = actorID
		res.CompanyOwnerUserID = actorID
	} else {
		res.PatientUserID = otherID
		res.CompanyOwnerUserID = otherID
	}
	return res
}

// TestRoleMatrix enumerates every role, kind, ownership and operation cell
func TestRoleMatrix(t *testing.T) {
	type cell struct{ read, write bool }
	type row map[scenario]cell

	expected := map[Kind]map[string]row{
		Company: {
			models.RoleAdmin:        {owned: {true, true}, foreign: {true, true}},
			models.RoleProfessional: {owned: {true, false}, foreign: {true, false}},
			models.RoleCompany:      {owned: {true, true}, foreign: {false, false}},
			models.RolePatient:      {owned: {false, false}, foreign: {false, false}},
		},
		Patient: {
			models.RoleAdmin:        {owned: {true, true}, foreign: {true, true}},
			models.RoleProfessional: {owned: {true, true}, foreign: {true, true}},
			models.RoleCompany:      {owned: {true, true}, foreign: {false, false}},
			models.RolePatient:      {owned: {true, true}, foreign: {false, false}},
		},
		MedicalRecord: {
			models.RoleAdmin:        {owned: {true, true}, foreign: {true, true}},
			models.RoleProfessional: {owned: {true, true}, foreign: {true, true}},
			models.RoleCompany:      {owned: {true, false}, foreign: {false, false}},
			models.RolePatient:      {owned: {true, false}, foreign: {false, false}},
		},
		Study: {
			models.RoleAdmin:        {owned: {true, true}, foreign: {true, true}},
			models.RoleProfessional: {owned: {true, true}, foreign: {true, true}},
			models.RoleCompany:      {owned: {true, false}, foreign: {false, false}},
			models.RolePatient:      {owned: {true, false}, foreign: {false, false}},
		},
		UserAccount: {
			models.RoleAdmin:        {owned: {true, true}, foreign: {true, true}},
			models.RoleProfessional: {owned: {false, false}, foreign: {false, false}},
			models.RoleCompany:      {owned: {false, false}, foreign: {false, false}},
			models.RolePatient:      {owned: {false, false}, foreign: {false, false}},
		},
	}

	for kind, roles := range expected {
		for role, scenarios := range roles {
			for s, want := range scenarios {
				actor := Actor{ID: actorID, Role: role}
				res := resourceFor(kind, s)

				t.Run(fmt.Sprintf("%s/%s/%s/read", kind, role, s), func(t *testing.T) {
					require.Equal(t, want.read, CanAccess(actor, Read, res))
				})
				t.Run(fmt.Sprintf("%s/%s/%s/write", kind, role, s), func(t *testing.T) {
					require.Equal(t, want.write, CanAccess(actor, Write, res))
				})
			}
		}
	}
}

func TestUnknownRoleAndAnonymousDenied(t *testing.T) {
	res := resourceFor(MedicalRecord, owned)

	require.False(t, CanAccess(Actor{ID: actorID, Role: "auditor"}, Read, res))
	require.False(t, CanAccess(Actor{Role: models.RoleAdmin}, Read, res))
}

func TestMissingOwnershipLinkDenies(t *testing.T) {
	// a patient with no employer is not visible to any company owner
	orphan := Resource{Kind: Patient, ID: "p-1"}
	require.False(t, CanAccess(Actor{ID: actorID, Role: models.RoleCompany}, Read, orphan))
	require.False(t, CanAccess(Actor{ID: "", Role: models.RoleCompany}, Read, orphan))
}

func TestWritesAreNarrowedToAuthor(t *testing.T) {
	professional := Actor{ID: actorID, Role: models.RoleProfessional}
	admin := Actor{ID: "admin-1", Role: models.RoleAdmin}

	mine := Resource{Kind: MedicalRecord, ID: "rec-1", CreatedByUserID: actorID}
	theirs := Resource{Kind: MedicalRecord, ID: "rec-2", CreatedByUserID: otherID}

	require.True(t, Allowed(professional, Read, theirs))
	require.False(t, Allowed(professional, Write, theirs))
	require.True(t, Allowed(professional, Write, mine))
	require.True(t, Allowed(admin, Write, theirs))

	study := Resource{Kind: Study, ID: "st-1", CreatedByUserID: otherID}
	require.False(t, Allowed(professional, Write, study))

	// creating a new record has no author yet
	require.True(t, Allowed(professional, Write, Resource{Kind: MedicalRecord}))

	// patients are not authored resources
	patient := Resource{Kind: Patient, ID: "p-1", CreatedByUserID: otherID}
	require.True(t, Allowed(professional, Write, patient))
}

func TestCanMutate(t *testing.T) {
	require.True(t, CanMutate(Actor{ID: "a", Role: models.RoleAdmin}, Resource{}))
	require.True(t, CanMutate(Actor{ID: "a", Role: models.RoleProfessional}, Resource{CreatedByUserID: "a"}))
	require.False(t, CanMutate(Actor{ID: "a", Role: models.RoleProfessional}, Resource{CreatedByUserID: "b"}))
	require.False(t, CanMutate(Actor{ID: "", Role: models.RoleProfessional}, Resource{}))
}

func TestAuthorize(t *testing.T) {
	res := resourceFor(MedicalRecord, foreign)

	err := Authorize(Actor{ID: actorID, Role: models.RoleCompany}, Read, res)
	require.True(t, types.Forbidden.Has(err))
	require.NoError(t, Authorize(Actor{ID: actorID, Role: models.RoleProfessional}, Read, res))
}
