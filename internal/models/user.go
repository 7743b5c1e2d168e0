package models

import "time"

// User owns collection entries. Email doubles as the contact that price
// watches are filed under.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string    `json:"email" gorm:"not null;uniqueIndex"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}
