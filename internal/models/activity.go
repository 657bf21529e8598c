package models

import "time"

const (
	ActivityAnswer       = "answer"
	ActivityAnswerDelete = "answer_delete"
	ActivityLike         = "like"
	ActivityUnlike       = "unlike"
	ActivityRate         = "rate"
	ActivityRateUpdate   = "rate_update"
)

// Activity is one entry of a user's action log. Stored in MongoDB when it is
// configured, otherwise in the relational store.
type Activity struct {
	ID         uint      `json:"-" bson:"-" gorm:"primaryKey"`
	Type       string    `json:"type" bson:"type" gorm:"size:30;index"`
	ActorID    uint      `json:"actor_id" bson:"actor_id" gorm:"index"`
	TargetID   uint      `json:"target_id" bson:"target_id"`
	TargetType string    `json:"target_type" bson:"target_type" gorm:"size:20"` // post, answer
	Value      int       `json:"value,omitempty" bson:"value,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" gorm:"index"`
}
