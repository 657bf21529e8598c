package repositories

import (
	"context"

	"github.com/quillhub/quill/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, answerID, userID uint) error
	HasUserLikedAnswer(ctx context.Context, answerID, userID uint) (bool, error)
	GetLikersByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint][]string, error)
	GetLikedPostsByUser(ctx context.Context, userID uint) ([]models.LikedPost, error)
}

// PostgresLikeRepository implements LikeRepository on gorm
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Omit("User", "Answer").Create(like).Error
}

// DeleteLike returns ErrLikeNotFound when there was nothing to delete
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, answerID, userID uint) error {
	res := r.db.WithContext(ctx).Where("answer_id = ? AND user_id = ?", answerID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasUserLikedAnswer(ctx context.Context, answerID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("answer_id = ? AND user_id = ?", answerID, userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikersByAnswerIDs returns the usernames that liked each answer, in like order.
func (r *PostgresLikeRepository) GetLikersByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint][]string, error) {
	result := make(map[uint][]string)
	if len(answerIDs) == 0 {
		return result, nil
	}

	var rows []models.AnswerLiker
	err := r.db.WithContext(ctx).
		Table("likes").
		Select("likes.answer_id AS answer_id, users.username AS username").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.answer_id IN ?", answerIDs).
		Order("likes.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.AnswerID] = append(result[row.AnswerID], row.Username)
	}
	return result, nil
}

// GetLikedPostsByUser lists every like of the user with the liked answer's post
func (r *PostgresLikeRepository) GetLikedPostsByUser(ctx context.Context, userID uint) ([]models.LikedPost, error) {
	var rows []models.LikedPost
	err := r.db.WithContext(ctx).
		Table("likes").
		Select("posts.id AS post_id, posts.title AS post_title, users.username AS username").
		Joins("JOIN answers ON answers.id = likes.answer_id").
		Joins("JOIN posts ON posts.id = answers.post_id").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.user_id = ?", userID).
		Order("likes.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
