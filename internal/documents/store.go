package documents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
)

// Store manages document retention flags.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a document store bound to the provided DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// MarkPermanent flips the document out of the temporary pool so upload
// cleanup leaves it alone. Flipping an already-permanent document is a no-op.
func (s *Store) MarkPermanent(ctx context.Context, documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", documentID).
		Update("is_temporary", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
