package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/entities"
	"github.com/wacrm/pkg/utils"
)

type Service interface {
	Upsert(ctx context.Context, waID string, displayName string) error
	ApplyMessage(ctx context.Context, waID string, preview string, messageAt time.Time, unreadDelta int) error
	MarkRead(ctx context.Context, waID string) error
	GetByWaID(ctx context.Context, waID string) (entities.Contact, error)
	List(ctx context.Context) ([]entities.Contact, error)
}

type service struct {
	repository       Repository
	previewMaxLength int
}

func NewService(r Repository, previewMaxLength int) Service {
	if previewMaxLength <= 0 {
		previewMaxLength = 1000
	}
	return &service{
		repository:       r,
		previewMaxLength: previewMaxLength,
	}
}

// Upsert creates or refreshes the conversation partner record. Message
// storage relies on this running before the message write.
func (s *service) Upsert(ctx context.Context, waID string, displayName string) error {
	normalized := utils.NormalizePhone(waID)
	if !utils.IsValidWaID(normalized) {
		return fmt.Errorf(constant.INVALID_PHONE_NUMBER)
	}
	return s.repository.UpsertProfile(ctx, normalized, displayName)
}

// ApplyMessage folds one stored message into the contact aggregates.
func (s *service) ApplyMessage(ctx context.Context, waID string, preview string, messageAt time.Time, unreadDelta int) error {
	normalized := utils.NormalizePhone(waID)
	if !utils.IsValidWaID(normalized) {
		return fmt.Errorf(constant.INVALID_PHONE_NUMBER)
	}
	preview = utils.Truncate(preview, s.previewMaxLength)
	return s.repository.ApplyMessageStats(ctx, normalized, preview, messageAt, unreadDelta)
}

// MarkRead resets the unread counter. Called by the mark-read action and
// by the status reconciler when an outgoing message reaches read.
func (s *service) MarkRead(ctx context.Context, waID string) error {
	return s.repository.ResetUnread(ctx, utils.NormalizePhone(waID))
}

func (s *service) GetByWaID(ctx context.Context, waID string) (entities.Contact, error) {
	return s.repository.FindByWaID(ctx, utils.NormalizePhone(waID))
}

func (s *service) List(ctx context.Context) ([]entities.Contact, error) {
	return s.repository.List(ctx)
}
