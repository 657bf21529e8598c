package repositories

import (
	"context"

	"github.com/quillhub/quill/backend/internal/models"
	"gorm.io/gorm"
)

// AnswerRepository defines the interface for answer data operations
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *models.Answer) error
	GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error)
	GetAnswersByPostID(ctx context.Context, postID uint) ([]models.Answer, error)
	DeleteAnswer(ctx context.Context, id uint) error
}

// PostgresAnswerRepository implements AnswerRepository on gorm
type PostgresAnswerRepository struct {
	db *gorm.DB
}

// NewPostgresAnswerRepository creates a new PostgresAnswerRepository
func NewPostgresAnswerRepository(db *gorm.DB) *PostgresAnswerRepository {
	return &PostgresAnswerRepository{db: db}
}

func (r *PostgresAnswerRepository) CreateAnswer(ctx context.Context, answer *models.Answer) error {
	if err := r.db.WithContext(ctx).Omit("Post", "User").Create(answer).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(answer, answer.ID).Error
}

// GetAnswerByID retrieves an answer with its author
func (r *PostgresAnswerRepository) GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.db.WithContext(ctx).Preload("User").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// GetAnswersByPostID retrieves all answers of a post, oldest first
func (r *PostgresAnswerRepository) GetAnswersByPostID(ctx context.Context, postID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// DeleteAnswer deletes an answer with its ratings and likes
func (r *PostgresAnswerRepository) DeleteAnswer(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Answer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
