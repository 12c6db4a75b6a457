package models

import "time"

type ReferralModel struct {
	ID                 string     `gorm:"primaryKey;size:64"`
	ClientName         string     `gorm:"size:255;not null"`
	Mobile             string     `gorm:"size:32;not null"`
	ReferrerID         string     `gorm:"size:64;index"`
	ReferrerName       string     `gorm:"size:255;index"`
	DateSubmitted      time.Time  `gorm:"index;not null"`
	ExpectedCommission float64    `gorm:"type:decimal(14,2);not null;default:0"`
	Status             string     `gorm:"size:32;index;not null"`
	ReminderDate       *time.Time `gorm:"index"`
	ReminderNote       *string    `gorm:"type:text"`
	Revision           int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PayoutModel struct {
	ID         string        `gorm:"primaryKey;size:64"`
	ReferralID string        `gorm:"size:64;uniqueIndex;not null"`
	UserID     string        `gorm:"size:64;index"`
	ClientName string        `gorm:"size:255"`
	Amount     float64       `gorm:"type:decimal(14,2);not null"`
	Date       time.Time     `gorm:"index;not null"`
	Referral   ReferralModel `gorm:"foreignKey:ReferralID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt  time.Time
}

type UserModel struct {
	ID                string  `gorm:"primaryKey;size:64"`
	Name              string  `gorm:"size:255"`
	Email             string  `gorm:"size:255;uniqueIndex;not null"`
	Picture           string  `gorm:"type:text"`
	Role              string  `gorm:"size:16;not null;default:user"`
	IsVerified        bool    `gorm:"not null;default:false"`
	VerificationToken *string `gorm:"size:64;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
