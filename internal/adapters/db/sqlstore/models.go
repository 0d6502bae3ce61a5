package sqlstore

import "time"

type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	Role      string `gorm:"not null;default:'admin'"`
	CreatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

type ClaimModel struct {
	ID           uint   `gorm:"primaryKey"`
	ClaimantName string `gorm:"not null"`
	Date         string `gorm:"not null"`
	Status       string `gorm:"not null;default:'New'"`
	Summary      string `gorm:"not null"`
	Details      string `gorm:"not null"`
	CreatedAt    time.Time
}

func (ClaimModel) TableName() string { return "claims" }

type ClaimNoteModel struct {
	ID        uint      `gorm:"primaryKey"`
	ClaimID   uint      `gorm:"not null;index"`
	AuthorID  string    `gorm:"not null"`
	Note      string    `gorm:"not null"`
	Timestamp time.Time `gorm:"autoCreateTime"`
}

func (ClaimNoteModel) TableName() string { return "claim_notes" }
