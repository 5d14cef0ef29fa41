package contacts

import (
	"context"
	"time"

	"github.com/wacrm/pkg/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxUnreadCount is a defensive upper bound on the unread counter.
const MaxUnreadCount = 10000

type Repository interface {
	FindByWaID(ctx context.Context, waID string) (entities.Contact, error)
	List(ctx context.Context) ([]entities.Contact, error)
	UpsertProfile(ctx context.Context, waID string, displayName string) error
	ApplyMessageStats(ctx context.Context, waID string, preview string, messageAt time.Time, unreadDelta int) error
	ResetUnread(ctx context.Context, waID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) FindByWaID(ctx context.Context, waID string) (entities.Contact, error) {
	var contact entities.Contact
	err := r.db.WithContext(ctx).Where("wa_id = ?", waID).First(&contact).Error
	return contact, err
}

func (r *repository) List(ctx context.Context) ([]entities.Contact, error) {
	var contacts []entities.Contact
	err := r.db.WithContext(ctx).Order("last_activity_at DESC").Find(&contacts).Error
	return contacts, err
}

// UpsertProfile creates the contact on first reference and refreshes the
// display name. It never touches the rolling counters.
func (r *repository) UpsertProfile(ctx context.Context, waID string, displayName string) error {
	contact := entities.Contact{
		WaID:        waID,
		DisplayName: displayName,
		IsActive:    true,
	}

	assignments := map[string]interface{}{
		"is_active":  true,
		"updated_at": time.Now(),
	}
	if displayName != "" {
		assignments["display_name"] = displayName
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wa_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&contact).Error
}

// ApplyMessageStats atomically folds one message write into the contact
// aggregates. Increments run inside the database so concurrent batch
// workers racing on the same wa_id cannot lose updates; the unread
// counter is clamped to MaxUnreadCount in the same expression.
func (r *repository) ApplyMessageStats(ctx context.Context, waID string, preview string, messageAt time.Time, unreadDelta int) error {
	now := time.Now()
	unread := unreadDelta
	if unread < 0 {
		unread = 0
	}
	if unread > MaxUnreadCount {
		unread = MaxUnreadCount
	}

	contact := entities.Contact{
		WaID:               waID,
		LastMessagePreview: preview,
		LastMessageAt:      &messageAt,
		UnreadCount:        unread,
		TotalMessageCount:  1,
		FirstMessageAt:     &messageAt,
		LastActivityAt:     &now,
		IsActive:           true,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wa_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_message_preview": preview,
			"last_message_at":      messageAt,
			"last_activity_at":     now,
			"updated_at":           now,
			"is_active":            true,
			"total_message_count":  gorm.Expr("contacts.total_message_count + 1"),
			"unread_count": gorm.Expr(
				"CASE WHEN contacts.unread_count + ? > ? THEN ? ELSE contacts.unread_count + ? END",
				unread, MaxUnreadCount, MaxUnreadCount, unread,
			),
		}),
	}).Create(&contact).Error
}

func (r *repository) ResetUnread(ctx context.Context, waID string) error {
	return r.db.WithContext(ctx).Model(&entities.Contact{}).
		Where("wa_id = ?", waID).
		Updates(map[string]interface{}{"unread_count": 0}).Error
}
