package models

// Tag titles are unique, compared case-sensitively.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"size:100;uniqueIndex;not null"`
}

type CreateTagRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}
