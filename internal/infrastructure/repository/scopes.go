package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// OwnerIDKey is the context key for the authenticated user who owns the
// records being queried.
const OwnerIDKey ctxKey = "owner_id"

// OwnerScope returns a GORM scope that filters rows to the authenticated
// user's data. Applied to every query on owned entities; a missing owner
// in the context yields no rows rather than everyone's rows.
func OwnerScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		ownerID, ok := ctx.Value(OwnerIDKey).(uuid.UUID)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", ownerID)
	}
}

// WithOwner adds the owning user ID to context
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

// GetOwnerID extracts the owning user ID from context
func GetOwnerID(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(uuid.UUID)
	return ownerID, ok
}
