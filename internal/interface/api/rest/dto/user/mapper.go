package user

import (
	"fileshare-api/internal/domain/user"
)

func ToResponseUser(uDomain user.User) User {
	return User{
		UUID:      uDomain.UUID,
		Email:     uDomain.Email,
		Name:      uDomain.Name,
		Role:      uDomain.Role,
		CreatedAt: uDomain.CreatedAt,
	}
}
