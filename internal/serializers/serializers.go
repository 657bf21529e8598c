// Package serializers turns stored entities into response payloads. Derived
// fields (average rating, like count, liked-by list, carousel) are computed
// here at read time and never stored.
package serializers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/quillhub/quill/backend/internal/models"
)

// AnswerRepresentation is an answer without its id and post reference,
// plus the aggregates.
type AnswerRepresentation struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Rating    float64   `json:"rating"`
	Like      int       `json:"like"`
	LikedBy   []string  `json:"liked_by"`
}

type PostListRepresentation struct {
	ID        uint      `json:"id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PostRepresentation struct {
	ID        uint                   `json:"id"`
	User      string                 `json:"user"`
	Title     string                 `json:"title"`
	Image     string                 `json:"image"`
	Slug      string                 `json:"slug"`
	Status    string                 `json:"status"`
	Tag       []uint                 `json:"tag"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Answers   []AnswerRepresentation `json:"answers"`
	Carousel  []string               `json:"carousel"`
}

type RatingRepresentation struct {
	Rating int    `json:"rating"`
	User   string `json:"user"`
	Post   uint   `json:"post"`
}

type LikedPostRepresentation struct {
	Post string `json:"post"`
	User string `json:"user"`
	URL  string `json:"url"`
}

// AnswerSource supplies the answers of a post
type AnswerSource interface {
	GetAnswersByPostID(ctx context.Context, postID uint) ([]models.Answer, error)
}

// RatingSource supplies rating aggregates for a batch of answers
type RatingSource interface {
	GetStatsByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint]models.RatingStat, error)
}

// LikeSource supplies liked-by lists for a batch of answers
type LikeSource interface {
	GetLikersByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint][]string, error)
}

// Serializer assembles representations. Aggregates for all answers of a post
// are fetched in one pass: one query for ratings and one for likes.
type Serializer struct {
	answers AnswerSource
	ratings RatingSource
	likes   LikeSource
}

func NewSerializer(answers AnswerSource, ratings RatingSource, likes LikeSource) *Serializer {
	return &Serializer{answers: answers, ratings: ratings, likes: likes}
}

// Post builds the detail representation. post must have User, Tags and Images loaded.
func (s *Serializer) Post(ctx context.Context, post *models.Post) (*PostRepresentation, error) {
	answers, err := s.answers.GetAnswersByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers of post %d: %w", post.ID, err)
	}
	answerReps, err := s.Answers(ctx, answers)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]uint, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}

	return &PostRepresentation{
		ID:        post.ID,
		User:      post.User.Username,
		Title:     post.Title,
		Image:     post.Image,
		Slug:      post.Slug,
		Status:    post.Status,
		Tag:       tagIDs,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Answers:   answerReps,
		Carousel:  Carousel(post.Images),
	}, nil
}

// Answers serializes a batch of answers. Each answer must have User loaded.
func (s *Serializer) Answers(ctx context.Context, answers []models.Answer) ([]AnswerRepresentation, error) {
	reps := make([]AnswerRepresentation, 0, len(answers))
	if len(answers) == 0 {
		return reps, nil
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.ID)
	}

	stats, err := s.ratings.GetStatsByAnswerIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	likers, err := s.likes.GetLikersByAnswerIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate likes: %w", err)
	}

	for _, a := range answers {
		likedBy := likers[a.ID]
		if likedBy == nil {
			likedBy = []string{}
		}
		stat := stats[a.ID]
		reps = append(reps, AnswerRepresentation{
			User:      a.User.Username,
			Text:      a.Text,
			CreatedAt: a.CreatedAt,
			Rating:    AverageRating(stat.Sum, stat.Count),
			Like:      len(likedBy),
			LikedBy:   likedBy,
		})
	}
	return reps, nil
}

// Answer serializes a single answer
func (s *Serializer) Answer(ctx context.Context, answer *models.Answer) (*AnswerRepresentation, error) {
	reps, err := s.Answers(ctx, []models.Answer{*answer})
	if err != nil {
		return nil, err
	}
	return &reps[0], nil
}

// PostList builds the list representation; posts must have User loaded.
func PostList(posts []models.Post) []PostListRepresentation {
	reps := make([]PostListRepresentation, 0, len(posts))
	for _, p := range posts {
		reps = append(reps, PostListRepresentation{
			ID:        p.ID,
			User:      p.User.Username,
			Title:     p.Title,
			Image:     p.Image,
			Slug:      p.Slug,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}
	return reps
}

// Carousel lists the image references of a post in insertion order
func Carousel(images []models.PostImage) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Image)
	}
	return out
}

func Rating(rating *models.Rating, username string) RatingRepresentation {
	return RatingRepresentation{Rating: rating.Rating, User: username, Post: rating.AnswerID}
}

func LikedPosts(rows []models.LikedPost) []LikedPostRepresentation {
	out := make([]LikedPostRepresentation, 0, len(rows))
	for _, row := range rows {
		out = append(out, LikedPostRepresentation{
			Post: row.PostTitle,
			User: row.Username,
			URL:  PostURL(row.PostID),
		})
	}
	return out
}

// PostURL is the canonical path of a post
func PostURL(id uint) string {
	return "/post/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// AverageRating returns the mean rating rounded to one decimal the way the
// shortest float formatting does, so 1.15 (stored as 1.1499..) becomes 1.1
// and 1.05 (stored as 1.0500..) becomes 1.1. No ratings yields 0.0.
func AverageRating(sum, count int64) float64 {
	if count <= 0 {
		return 0.0
	}
	mean := float64(sum) / float64(count)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	if err != nil {
		return mean
	}
	return rounded
}
