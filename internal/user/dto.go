package user

import (
	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/core/common/validation"
)

type UserResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// CreateUserDTO is the admin-side account creation payload.
type CreateUserDTO struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("age", dto.Age).MinInt(0)
	v.Field("role", dto.Role).OneOf(internal.RoleAdmin, internal.RoleEmployee)

	if err := validation.Merge(
		validation.ValidateUsername(dto.Username),
		validation.ValidateEmail(dto.Email),
		validation.ValidatePassword(dto.Password),
		v.Validate(),
	); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO carries a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Name       *string `json:"name,omitempty"`
	Age        *int    `json:"age,omitempty"`
	Email      *string `json:"email,omitempty"`
	Username   *string `json:"username,omitempty"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	var errs []*internal.AppError
	if dto.Email != nil {
		errs = append(errs, validation.ValidateEmail(*dto.Email))
	}
	if dto.Username != nil {
		errs = append(errs, validation.ValidateUsername(*dto.Username))
	}
	v := validation.NewValidator()
	if dto.Age != nil {
		v.Field("age", *dto.Age).MinInt(0)
	}
	if dto.Role != nil {
		v.Field("role", *dto.Role).Required().OneOf(internal.RoleAdmin, internal.RoleEmployee)
	}
	errs = append(errs, v.Validate())

	if err := validation.Merge(errs...); err != nil {
		return err
	}
	return nil
}

type UpdatePasswordDTO struct {
	NewPassword string `json:"newPassword"`
}

func (dto UpdatePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("newPassword", dto.NewPassword).
		Required().
		MinLength(6).
		MaxLength(72)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
