package domain

import "time"

// User is the identity a record belongs to. Rows are provisioned by the
// identity provider; this service only reads them.
type User struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"size:150;not null;uniqueIndex"`
	Email     string    `gorm:"size:254"`
	FirstName string    `gorm:"size:150"`
	LastName  string    `gorm:"size:150"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
