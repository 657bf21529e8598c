package serializers

import (
	"context"
	"fmt"

	"github.com/quillhub/quill/backend/internal/apperr"
)

// TagTitleChecker reports whether a tag title is taken
type TagTitleChecker interface {
	TitleExists(ctx context.Context, title string) (bool, error)
}

// ValidateTag rejects a title that already exists, compared case-sensitively.
func ValidateTag(ctx context.Context, tags TagTitleChecker, title string) error {
	exists, err := tags.TitleExists(ctx, title)
	if err != nil {
		return fmt.Errorf("check tag title: %w", err)
	}
	if exists {
		return apperr.Validation("Tag with this name already exists")
	}
	return nil
}
