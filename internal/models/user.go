package models

import (
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// User is a row of the user table.
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Ty         v1.UserTy `gorm:"not null"`
	Username   string    `gorm:"size:255;uniqueIndex;not null"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
}

func (User) TableName() string { return "user" }

// ToAPI converts the row to its API representation.
func (u User) ToAPI() v1.User {
	return v1.User{
		ID:         u.ID,
		Ty:         u.Ty,
		Username:   u.Username,
		TelegramID: u.TelegramID,
	}
}
