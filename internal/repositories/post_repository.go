package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillhub/quill/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post, tagIDs []uint, images []string) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post, tagIDs *[]uint) error
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository on gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost persists the post, associates its tags and bulk-creates its
// carousel images in one transaction. Any failure leaves no post behind.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post, tagIDs []uint, images []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := findTags(tx, tagIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}

		if len(tags) > 0 {
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("set tags: %w", err)
			}
		}
		post.Tags = tags

		if len(images) > 0 {
			rows := make([]models.PostImage, 0, len(images))
			for _, image := range images {
				rows = append(rows, models.PostImage{PostID: post.ID, Image: image})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("create post images: %w", err)
			}
			post.Images = rows
		}
		return nil
	})
}

// GetPostByID loads the post with its owner, tags and carousel
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.id") }).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPosts lists posts by creation time, newest first unless Ascending is set.
// Every whitespace-separated search term must appear in the title or the owner's username.
func (r *PostgresPostRepository) GetPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	var posts []models.Post
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return posts, nil
	}

	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*").
		Joins("JOIN users ON users.id = posts.user_id").
		Preload("User")

	for _, term := range strings.Fields(filter.Search) {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(posts.title) LIKE ? OR LOWER(users.username) LIKE ?)", pattern, pattern)
	}
	if filter.IDs != nil {
		q = q.Where("posts.id IN ?", filter.IDs)
	}

	if filter.Ascending {
		q = q.Order("posts.created_at ASC").Order("posts.id ASC")
	} else {
		q = q.Order("posts.created_at DESC").Order("posts.id DESC")
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost saves the scalar fields and, when tagIDs is non-nil, replaces the tag set.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post, tagIDs *[]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(post).
			Updates(map[string]interface{}{
				"title":  post.Title,
				"image":  post.Image,
				"status": post.Status,
			}).Error
		if err != nil {
			return err
		}

		if tagIDs == nil {
			return nil
		}
		tags, err := findTags(tx, *tagIDs)
		if err != nil {
			return err
		}
		association := tx.Model(post).Association("Tags")
		if len(tags) == 0 {
			err = association.Clear()
		} else {
			err = association.Replace(tags)
		}
		if err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		post.Tags = tags
		return nil
	})
}

// DeletePost removes the post together with its answers (and their ratings
// and likes), carousel images and tag links.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answerIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Answer{}).Select("id").Where("post_id = ?", id)

		if err := tx.Where("answer_id IN (?)", answerIDs).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id IN (?)", answerIDs).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// findTags loads the tags with the given ids, failing with ErrUnknownTag if any is missing.
func findTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	if err := tx.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, ErrUnknownTag
	}
	return tags, nil
}
