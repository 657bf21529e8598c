package repositories

import (
	"context"

	"github.com/quillhub/quill/backend/internal/models"
	"gorm.io/gorm"
)

type TagRepository interface {
	CreateTag(ctx context.Context, tag *models.Tag) error
	GetTagByID(ctx context.Context, id uint) (*models.Tag, error)
	GetTags(ctx context.Context) ([]models.Tag, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	DeleteTag(ctx context.Context, id uint) ([]uint, error)
}

type PostgresTagRepository struct {
	db *gorm.DB
}

func NewPostgresTagRepository(db *gorm.DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

func (r *PostgresTagRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *PostgresTagRepository) GetTagByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *PostgresTagRepository) GetTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("id").Find(&tags).Error
	return tags, err
}

// TitleExists matches the title exactly; "Travel" and "travel" are different tags.
func (r *PostgresTagRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("title = ?", title).Count(&count).Error
	return count > 0, err
}

// DeleteTag removes the tag and its post associations. It returns the ids of
// the posts that carried the tag.
func (r *PostgresTagRepository) DeleteTag(ctx context.Context, id uint) ([]uint, error) {
	var postIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("post_tags").Where("tag_id = ?", id).Pluck("post_id", &postIDs).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return postIDs, nil
}
