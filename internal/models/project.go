package models

import (
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// Project is a row of the project table.
type Project struct {
	ID       int64        `gorm:"primaryKey;autoIncrement"`
	Ty       v1.ProjectTy `gorm:"not null"`
	Title    string       `gorm:"size:40;not null"`
	Descript *string
	AuthorID int64 `gorm:"not null;index"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string { return "project" }

// ToAPI converts the row to its API representation.
func (p Project) ToAPI() v1.ProjectInfo {
	return v1.ProjectInfo{
		ID:          p.ID,
		Ty:          p.Ty,
		Title:       p.Title,
		Description: p.Descript,
		AuthorID:    p.AuthorID,
	}
}
