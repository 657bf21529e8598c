package validators

import (
	"testing"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/models"
)

func TestRatingValueValidation(t *testing.T) {
	v := NewValidator()
	for _, value := range []int{1, 2, 3, 4, 5} {
		if err := v.Validate(&models.RatingRequest{Rating: value}); err != nil {
			t.Fatalf("rating %d rejected: %v", value, err)
		}
	}
	for _, value := range []int{-1, 0, 6, 10, 100} {
		err := v.Validate(&models.RatingRequest{Rating: value})
		if err == nil {
			t.Fatalf("rating %d accepted", value)
		}
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("rating %d: kind = %v, want validation", value, apperr.KindOf(err))
		}
	}
}

func TestCreatePostValidation(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&models.CreatePostRequest{Title: "Trip", Status: "published", CarouselImg: []string{"a.png"}}); err != nil {
		t.Fatalf("valid post rejected: %v", err)
	}
	if err := v.Validate(&models.CreatePostRequest{Title: ""}); err == nil {
		t.Fatal("post without title accepted")
	}
	if err := v.Validate(&models.CreatePostRequest{Title: "Trip", Status: "hidden"}); err == nil {
		t.Fatal("unknown status accepted")
	}
	if err := v.Validate(&models.CreatePostRequest{Title: "Trip", CarouselImg: []string{""}}); err == nil {
		t.Fatal("empty carousel image accepted")
	}
}
