package response

import (
	"time"

	"profile-auth/internal/data/entity"
)

// UserResponse is the only outward shape of a user. Fields are listed
// explicitly; the password hash has no counterpart here.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, user := range users {
		resp[i] = UserToResponse(user)
	}
	return resp
}
