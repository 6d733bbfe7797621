package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"column:full_name;type:varchar(150);not null" json:"fullName"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	Role      string    `gorm:"column:role;type:varchar(20);not null;default:'member'" json:"role"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
