package models

import "time"

// Rating is one user's score for an answer; at most one per (user, answer).
type Rating struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_rating_user_answer"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	AnswerID  uint      `json:"post" gorm:"not null;index;uniqueIndex:idx_rating_user_answer"`
	Answer    Answer    `json:"-" gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE;"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type RatingRequest struct {
	Rating int `json:"rating" validate:"required,oneof=1 2 3 4 5"`
}

// RatingStat is the aggregate of all ratings of one answer
type RatingStat struct {
	AnswerID uint
	Sum      int64
	Count    int64
}
