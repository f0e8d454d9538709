package entities

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CompanyID    uuid.UUID `json:"company_id"`
	IsActive     bool      `json:"is_active"`    // Account enabled
	IsSuperuser  bool      `json:"is_superuser"` // Platform admin
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Email        *string
	Name         *string
	PasswordHash *string
	IsActive     *bool
}

// CompanyStats is the platform overview shown to superusers.
type CompanyStats struct {
	TotalCompanies int `json:"total_companies"`
	TotalUsers     int `json:"total_users"`
	ActiveUsers    int `json:"active_users"`
	TotalChats     int `json:"total_chats"`
	TotalMessages  int `json:"total_messages"`
}
