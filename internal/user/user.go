package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/project-management/internal"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
)

type User struct {
	ID           int64
	Name         string
	Age          int
	Email        string
	Username     string
	PasswordHash string
	Position     string
	Department   string
	Role         string
	CreatedAt    time.Time
}

// EffectiveRole reports the stored role, treating a blank one as EMPLOYEE.
func (u *User) EffectiveRole() string {
	if u.Role == "" {
		return internal.RoleEmployee
	}
	return u.Role
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Age:        u.Age,
		Email:      u.Email,
		Username:   u.Username,
		Position:   u.Position,
		Department: u.Department,
		Role:       u.EffectiveRole(),
	}
}

// ApplyUpdate overwrites only the fields present in dto.
func (u *User) ApplyUpdate(dto UpdateUserDTO) {
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Age != nil {
		u.Age = *dto.Age
	}
	if dto.Email != nil {
		u.Email = *dto.Email
	}
	if dto.Username != nil {
		u.Username = *dto.Username
	}
	if dto.Position != nil {
		u.Position = *dto.Position
	}
	if dto.Department != nil {
		u.Department = *dto.Department
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
}

var (
	ErrNotFound = errors.New("user not found")
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Age:          u.Age,
		Position:     u.Position,
		Department:   u.Department,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Age:          u.Age,
		Position:     u.Position,
		Department:   u.Department,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}

func ToResponses(users []*User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses
}
