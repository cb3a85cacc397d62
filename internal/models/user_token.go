package models

import (
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// UserToken is a row of the usertoken table. Token holds the bearer secret.
type UserToken struct {
	ID       int64             `gorm:"primaryKey;autoIncrement"`
	UserID   int64             `gorm:"not null;index"`
	User     *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token    string            `gorm:"size:48;uniqueIndex;not null"`
	IssuedAt int64             `gorm:"not null;index"`
	Ty       v1.UserTokenTy    `gorm:"not null"`
	Scope    v1.UserTokenScope `gorm:"not null"`
}

func (UserToken) TableName() string { return "usertoken" }

// ToAPI converts the row to its API representation.
func (t UserToken) ToAPI() v1.UserToken {
	return v1.UserToken{
		ID:       t.ID,
		Ty:       t.Ty,
		UserID:   t.UserID,
		Scope:    t.Scope,
		IssuedAt: t.IssuedAt,
		Token:    t.Token,
	}
}
