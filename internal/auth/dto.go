package auth

import (
	"github.com/frahmantamala/project-management/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if err := validation.Merge(
		validation.ValidateUsername(d.Username),
		validation.ValidateEmail(d.Email),
		validation.ValidatePassword(d.Password),
	); err != nil {
		return err
	}
	return nil
}
