package messages

import (
	"context"

	"github.com/wacrm/pkg/entities"
	"github.com/wacrm/pkg/utils"
	"gorm.io/gorm"
)

type Repository interface {
	FindByMessageKey(ctx context.Context, key string) (entities.Message, error)
	FindByAnyKey(ctx context.Context, primary string, alternate string) (entities.Message, error)
	Create(ctx context.Context, message *entities.Message) error
	SaveStatus(ctx context.Context, message *entities.Message) error
	ListByWaID(ctx context.Context, waID string, pageNumber int) ([]entities.Message, int, error)
	CountByWaID(ctx context.Context, waID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) FindByMessageKey(ctx context.Context, key string) (entities.Message, error) {
	var message entities.Message
	err := r.db.WithContext(ctx).Where("message_key = ?", key).First(&message).Error
	return message, err
}

// FindByAnyKey looks the message up by its primary key first and falls
// back to the alternate identifier some producers fill instead.
func (r *repository) FindByAnyKey(ctx context.Context, primary string, alternate string) (entities.Message, error) {
	var message entities.Message
	if primary != "" {
		err := r.db.WithContext(ctx).Where("message_key = ?", primary).First(&message).Error
		if err == nil || err != gorm.ErrRecordNotFound {
			return message, err
		}
	}
	if alternate == "" || alternate == primary {
		return message, gorm.ErrRecordNotFound
	}
	err := r.db.WithContext(ctx).Where("message_key = ?", alternate).First(&message).Error
	return message, err
}

func (r *repository) Create(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// SaveStatus persists only the status bookkeeping fields of a message.
func (r *repository) SaveStatus(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Model(message).
		Select("status", "status_timestamps", "status_history").
		Updates(message).Error
}

func (r *repository) ListByWaID(ctx context.Context, waID string, pageNumber int) ([]entities.Message, int, error) {
	var messages []entities.Message
	totalPages, err := utils.Pagination(&messages, pageNumber, r.db.Order("timestamp ASC"), ctx, "wa_id = ?", waID)
	return messages, totalPages, err
}

func (r *repository) CountByWaID(ctx context.Context, waID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Message{}).Where("wa_id = ?", waID).Count(&count).Error
	return count, err
}
