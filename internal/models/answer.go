package models

import "time"

// Answer represents a comment on a post
type Answer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	Post      Post      `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAnswerRequest is the body of POST /post/{id}/answer/. The author and
// the post come from the request, never from the payload.
type CreateAnswerRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

// CreateStandaloneAnswerRequest is the body of POST /answer/
type CreateStandaloneAnswerRequest struct {
	Post uint   `json:"post" validate:"required,gt=0"`
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

type DeleteAnswerRequest struct {
	AnswerID uint `json:"answer_id" query:"answer_id" validate:"required,gt=0"`
}
