package models

import (
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// UserInvite is a single use ticket creating one user of type UserTy.
// ClaimedUserID is set once the invite has been consumed.
type UserInvite struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	UserTy        v1.UserTy `gorm:"not null"`
	Reason        string    `gorm:"not null"`
	Invite        string    `gorm:"size:48;uniqueIndex;not null"`
	IssuedAt      int64     `gorm:"not null"`
	ClaimedUserID *int64    `gorm:"index"`
}

func (UserInvite) TableName() string { return "userinvite" }

// Claimed reports whether the invite has been consumed.
func (i UserInvite) Claimed() bool { return i.ClaimedUserID != nil }
