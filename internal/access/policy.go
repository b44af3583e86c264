package access

import (
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
)

// Kind is the type of resource being accessed
type Kind string

const (
	Company       Kind = "company"
	Patient       Kind = "patient"
	MedicalRecord Kind = "medical_record"
	Study         Kind = "study"
	UserAccount   Kind = "user_account"
)

// Op is a read or a write of a resource
type Op int

const (
	Read Op = iota
	Write
)

func (o Op) String() string {
	if o == Write {
		return "write"
	}
	return "read"
}

// Actor is the authenticated caller
type Actor struct {
	ID   string
	Role string
}

// Resource describes a resource and its ownership chain. Empty ids mean the
// link does not exist, e.g. a patient without an employer.
type Resource struct {
	Kind Kind
	ID   string
	// PatientUserID is the login of the patient the resource belongs to
	PatientUserID string
	// CompanyOwnerUserID is the owner of the company the resource belongs to
	CompanyOwnerUserID string
	// CreatedByUserID is the author of a medical record or study
	CreatedByUserID string
}

// grant is one cell of the role matrix
type grant int

const (
	none grant = iota
	all
	readAll
	ownCompany
	ownCompanyRead
	ownRecord
	ownRecordRead
)

var matrix = map[Kind]map[string]grant{
	Company: {
		models.RoleAdmin:        all,
		models.RoleProfessional: readAll,
		models.RoleCompany:      ownCompany,
		models.RolePatient:      none,
	},
	Patient: {
		models.RoleAdmin:        all,
		models.RoleProfessional: all,
		models.RoleCompany:      ownCompany,
		models.RolePatient:      ownRecord,
	},
	MedicalRecord: {
		models.RoleAdmin:        all,
		models.RoleProfessional: all,
		models.RoleCompany:      ownCompanyRead,
		models.RolePatient:      ownRecordRead,
	},
	Study: {
		models.RoleAdmin:        all,
		models.RoleProfessional: all,
		models.RoleCompany:      ownCompanyRead,
		models.RolePatient:      ownRecordRead,
	},
	UserAccount: {
		models.RoleAdmin: all,
	},
}

// authoredKinds are only mutated by their author unless the actor is an admin
var authoredKinds = map[Kind]bool{
	MedicalRecord: true,
	Study:         true,
}

func (g grant) allows(actor Actor, op Op, res Resource) bool {
	switch g {
	case all:
		return true
	case readAll:
		return op == Read
	case ownCompany:
		return ownsCompany(actor, res)
	case ownCompanyRead:
		return op == Read && ownsCompany(actor, res)
	case ownRecord:
		return ownsRecord(actor, res)
	case ownRecordRead:
		return op == Read && ownsRecord(actor, res)
	}
	return false
}

func ownsCompany(actor Actor, res Resource) bool {
	return res.CompanyOwnerUserID != "" && res.CompanyOwnerUserID == actor.ID
}

func ownsRecord(actor Actor, res Resource) bool {
	return res.PatientUserID != "" && res.PatientUserID == actor.ID
}

// CanAccess evaluates the role matrix for one operation on one resource
func CanAccess(actor Actor, op Op, res Resource) bool {
	if actor.ID == "" {
		return false
	}
	return matrix[res.Kind][actor.Role].allows(actor, op, res)
}

// CanMutate is the author check applied to writes of medical records and
// studies. Admins mutate anything, everybody else only what they created.
func CanMutate(actor Actor, res Resource) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return res.CreatedByUserID != "" && res.CreatedByUserID == actor.ID
}

// Allowed combines the role matrix with the author check for writes
func Allowed(actor Actor, op Op, res Resource) bool {
	if !CanAccess(actor, op, res) {
		return false
	}
	if op == Write && authoredKinds[res.Kind] && res.ID != "" {
		return CanMutate(actor, res)
	}
	return true
}

// Authorize returns a Forbidden error when the actor may not perform op
func Authorize(actor Actor, op Op, res Resource) error {
	if Allowed(actor, op, res) {
		return nil
	}
	return types.Forbidden.New("%s may not %s %s %s", actor.Role, op, res.Kind, res.ID)
}
