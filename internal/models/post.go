package models

import "time"

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post is owned by a user. Answers and PostImages are removed with it.
type Post struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	UserID    uint        `json:"user_id" gorm:"not null;index"`
	User      User        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Title     string      `json:"title" gorm:"size:255;not null"`
	Image     string      `json:"image"`
	Slug      string      `json:"slug" gorm:"size:300;uniqueIndex;not null"`
	Status    string      `json:"status" gorm:"size:20;not null;default:'published'"`
	Tags      []Tag       `json:"-" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;"`
	Images    []PostImage `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PostImage is one carousel entry of a post, in insertion order.
type PostImage struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	PostID uint   `json:"post_id" gorm:"not null;index"`
	Image  string `json:"image" gorm:"not null"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Image       string   `json:"image" validate:"omitempty,max=1024"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags        []uint   `json:"tag" validate:"omitempty,dive,gt=0"`
	CarouselImg []string `json:"carousel_img" validate:"omitempty,dive,required,max=1024"`
}

// UpdatePostRequest is used by both PUT and PATCH; PUT additionally
// requires a title.
type UpdatePostRequest struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=255"`
	Image  *string `json:"image" validate:"omitempty,max=1024"`
	Status *string `json:"status" validate:"omitempty,oneof=draft published"`
	Tags   *[]uint `json:"tag" validate:"omitempty,dive,gt=0"`
}

// PostFilter carries the list query of GET /post/
type PostFilter struct {
	Search    string
	Ascending bool
	IDs       []uint // restricts the list when search ran on an external index
	Skip      int
	Limit     int
}
