package model

import "time"

type User struct {
	ID          string `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex"`
	Username    string `gorm:"uniqueIndex;not null"`
	Password    string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
