package model

import (
	"time"
)

type UserRole string

const (
	Member UserRole = "member"
	Admin  UserRole = "admin"
)

type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('member','admin');default:'member'" json:"role"`
	// Points 只增不减，由进度账本在提交通过时更新；Rank 始终等于 RankFor(Points)
	Points    int       `gorm:"default:0" json:"points"`
	Rank      string    `gorm:"size:20;default:'Bronze'" json:"rank"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
