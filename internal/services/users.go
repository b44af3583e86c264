package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/database"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/gorm"
)

// Users is the admin surface over local accounts and professional profiles
type Users struct {
	DB *gorm.DB
}

// UserInput carries the writable fields of an account. ID is the identity of
// the user at the authorizer.
type UserInput struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	IsActive      *bool  `json:"is_active"`
	LicenseNumber string `json:"license_number"`
	Specialty     string `json:"specialty"`
}

// Account is a user with its professional profile when it has one
type Account struct {
	models.User
	Professional *models.Professional `json:"professional,omitempty"`
}

var roles = map[string]bool{
	models.RoleAdmin:        true,
	models.RoleProfessional: true,
	models.RoleCompany:      true,
	models.RolePatient:      true,
}

func accountResource(id string) access.Resource {
	return access.Resource{Kind: access.UserAccount, ID: id}
}

// List returns every account
func (s *Users) List(ctx context.Context, actor access.Actor) ([]models.User, error) {
	if err := access.Authorize(actor, access.Read, accountResource("")); err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := silent(s.DB).WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns one account with its professional profile
func (s *Users) Get(ctx context.Context, actor access.Actor, id string) (*Account, error) {
	var user models.User
	if err := first(ctx, s.DB, &user, "user", id); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Read, accountResource(id)); err != nil {
		return nil, err
	}

	account := &Account{User: user}
	var pro models.Professional
	err := silent(s.DB).WithContext(ctx).Where("user_id = ?", id).First(&pro).Error
	switch {
	case err == nil:
		account.Professional = &pro
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return account, nil
}

// Create registers an account. Professionals get their profile in the same
// transaction.
func (s *Users) Create(ctx context.Context, actor access.Actor, in UserInput) (*Account, error) {
	if err := access.Authorize(actor, access.Write, accountResource("")); err != nil {
		return nil, err
	}
	if in.Email == "" {
		return nil, types.Validation.New("email is required")
	}
	if !roles[in.Role] {
		return nil, types.Validation.New("unknown role %q", in.Role)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	account := &Account{User: models.User{ID: in.ID, Email: in.Email, FullName: in.FullName, Role: in.Role, IsActive: true}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account.User).Error; err != nil {
			return database.Classify(err)
		}
		if in.IsActive != nil && !*in.IsActive {
			if err := tx.Model(&account.User).Update("is_active", false).Error; err != nil {
				return err
			}
			account.IsActive = false
		}
		if in.Role != models.RoleProfessional {
			return nil
		}
		account.Professional = &models.Professional{
			ID:            uuid.NewString(),
			UserID:        in.ID,
			FullName:      in.FullName,
			LicenseNumber: in.LicenseNumber,
			Specialty:     in.Specialty,
		}
		return database.Classify(tx.Create(account.Professional).Error)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Update changes the name, role or active flag of an account
func (s *Users) Update(ctx context.Context, actor access.Actor, id string, in UserInput) (*Account, error) {
	var user models.User
	if err := first(ctx, s.DB, &user, "user", id); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.Write, accountResource(id)); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FullName != "" {
		updates["full_name"] = in.FullName
	}
	if in.Email != "" {
		updates["email"] = in.Email
	}
	if in.Role != "" {
		if !roles[in.Role] {
			return nil, types.Validation.New("unknown role %q", in.Role)
		}
		updates["role"] = in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return database.Classify(err)
			}
		}
		if in.LicenseNumber == "" && in.Specialty == "" {
			return nil
		}
		var pro models.Professional
		err := tx.Where("user_id = ?", id).First(&pro).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pro = models.Professional{ID: uuid.NewString(), UserID: id, FullName: user.FullName}
		} else if err != nil {
			return err
		}
		if in.LicenseNumber != "" {
			pro.LicenseNumber = in.LicenseNumber
		}
		if in.Specialty != "" {
			pro.Specialty = in.Specialty
		}
		return database.Classify(tx.Save(&pro).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete removes an account and its professional profile
func (s *Users) Delete(ctx context.Context, actor access.Actor, id string) error {
	var user models.User
	if err := first(ctx, s.DB, &user, "user", id); err != nil {
		return err
	}
	if err := access.Authorize(actor, access.Write, accountResource(id)); err != nil {
		return err
	}
	if id == actor.ID {
		return types.Validation.New("admins may not delete themselves")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Professional{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
}
