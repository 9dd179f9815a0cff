package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Username  string     `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	FirstName string     `gorm:"size:150;not null" json:"first_name"`
	LastName  string     `gorm:"size:150;not null" json:"last_name"`
	IsStaff   bool       `gorm:"not null" json:"is_staff"`
	IsActive  bool       `gorm:"not null" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"date_joined"`
	UpdatedAt time.Time  `json:"-"`
}

func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	return
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
