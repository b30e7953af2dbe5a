package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Fullname     string    `gorm:"size:140" json:"fullname"`
	Email        string    `gorm:"size:140;uniqueIndex;not null" json:"email"`
	Mobile       string    `gorm:"size:40" json:"mobile"`
	Gender       string    `gorm:"size:20" json:"gender"`
	Pincode      string    `gorm:"size:20" json:"pincode"`
	Address      string    `gorm:"type:text" json:"address"`
	ProfilePic   string    `gorm:"size:255" json:"profilePic"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Provider     string    `gorm:"size:20;default:local" json:"provider"`
	Role         Role      `gorm:"type:varchar(10);default:user" json:"role"`
	Status       string    `gorm:"size:20;default:Active" json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the caller identity recovered from a verified token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanActFor reports whether the principal may touch userID's cart or wishlist.
func (p Principal) CanActFor(userID uuid.UUID) bool {
	return p.IsAdmin() || (p.UserID != uuid.Nil && p.UserID == userID)
}
