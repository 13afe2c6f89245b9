package model

import "time"

type UserRole string

const (
	UserRoleUser    UserRole = "user"
	UserRolePremium UserRole = "premium"
	UserRoleAdmin   UserRole = "admin"
)

// User holds account and profile data. Token issuance and session
// handling live outside this service; only the password hash is stored.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string   `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	FirstName    string   `gorm:"size:100" json:"first_name,omitempty"`
	LastName     string   `gorm:"size:100" json:"last_name,omitempty"`
	Role         UserRole `gorm:"size:20;not null;default:user" json:"role"`
	IsActive     bool     `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool     `gorm:"not null;default:false" json:"is_verified"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName falls back to the username when profile names are empty.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

func (u *User) IsAdmin() bool { return u.Role == UserRoleAdmin }

func (u *User) IsPremium() bool {
	return u.Role == UserRolePremium || u.Role == UserRoleAdmin
}
