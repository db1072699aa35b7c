package journal

import (
	"context"
	"errors"
	"testing"
)

func TestRepositoryWithoutDatabase(t *testing.T) {
	var nilRepo *Repository
	if _, err := nilRepo.Recent(context.Background(), "STU-1", 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("nil repo Recent: expected ErrUnavailable, got %v", err)
	}

	repo := NewRepository(nil)
	if _, err := repo.Recent(context.Background(), "STU-1", 10); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Recent without db: expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.Insert(context.Background(), Entry{JustificationCode: "J1"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Insert without db: expected ErrUnavailable, got %v", err)
	}
}
