package repositories

import (
	"context"

	"github.com/quillhub/quill/backend/internal/models"
	"gorm.io/gorm"
)

// RatingRepository defines the interface for rating operations
type RatingRepository interface {
	GetRating(ctx context.Context, userID, answerID uint) (*models.Rating, error)
	CreateRating(ctx context.Context, rating *models.Rating) error
	UpdateRatingValue(ctx context.Context, rating *models.Rating, value int) error
	GetStatsByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint]models.RatingStat, error)
}

type postgresRatingRepository struct {
	db *gorm.DB
}

func NewPostgresRatingRepository(db *gorm.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

// GetRating returns gorm.ErrRecordNotFound when the user has not rated the answer
func (r *postgresRatingRepository) GetRating(ctx context.Context, userID, answerID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).Where("user_id = ? AND answer_id = ?", userID, answerID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *postgresRatingRepository) CreateRating(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Omit("User", "Answer").Create(rating).Error
}

func (r *postgresRatingRepository) UpdateRatingValue(ctx context.Context, rating *models.Rating, value int) error {
	if err := r.db.WithContext(ctx).Model(rating).Update("rating", value).Error; err != nil {
		return err
	}
	rating.Rating = value
	return nil
}

// GetStatsByAnswerIDs aggregates sum and count of ratings per answer in one query.
// Answers without ratings are absent from the map.
func (r *postgresRatingRepository) GetStatsByAnswerIDs(ctx context.Context, answerIDs []uint) (map[uint]models.RatingStat, error) {
	result := make(map[uint]models.RatingStat)
	if len(answerIDs) == 0 {
		return result, nil
	}

	var rows []models.RatingStat
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("answer_id, CAST(SUM(rating) AS BIGINT) AS sum, COUNT(*) AS count").
		Where("answer_id IN ?", answerIDs).
		Group("answer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.AnswerID] = row
	}
	return result, nil
}
