package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;size:255"`
	Username     string    `gorm:"column:username;size:100;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Age          int       `gorm:"column:age"`
	Position     string    `gorm:"column:position;size:255"`
	Department   string    `gorm:"column:department;size:255"`
	Role         string    `gorm:"column:role;size:50;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}
