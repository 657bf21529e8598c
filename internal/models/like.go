package models

import "time"

// Like represents a like on an answer
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_answer"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	AnswerID  uint      `json:"answer_id" gorm:"not null;index;uniqueIndex:idx_like_user_answer"`
	Answer    Answer    `json:"-" gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerLiker is one row of the liked-by join
type AnswerLiker struct {
	AnswerID uint
	Username string
}

// LikedPost is one row of the liked-posts listing
type LikedPost struct {
	PostID    uint
	PostTitle string
	Username  string
}
