package messages

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wacrm/pkg/config"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/dtos"
	"github.com/wacrm/pkg/entities"
	"github.com/wacrm/pkg/utils"
	"gorm.io/gorm"
)

type Service interface {
	// Store persists a normalized message once per message key. The
	// second return value reports whether the call created the record.
	Store(ctx context.Context, message *entities.Message) (*entities.Message, bool, error)
	// ApplyStatus reconciles one asynchronous status event against the
	// stored messages, creating a placeholder when the original message
	// is unknown.
	ApplyStatus(ctx context.Context, event StatusEvent) (ReconcileOutcome, error)
	// Send simulates an outbound send by persisting an outgoing message
	// locally and advancing it from sending to sent.
	Send(ctx context.Context, req dtos.SendMessageDTO) (*dtos.MessageResponseDTO, error)
	ListByWaID(ctx context.Context, waID string, pageNumber int) ([]entities.Message, int, error)
}

type service struct {
	repository Repository
	contacts   contacts.Service
	conf       config.WhatsApp
}

func NewService(r Repository, c contacts.Service, conf config.WhatsApp) Service {
	return &service{
		repository: r,
		contacts:   c,
		conf:       conf,
	}
}

func (s *service) Store(ctx context.Context, message *entities.Message) (*entities.Message, bool, error) {
	if message.MessageKey == "" {
		return nil, false, fmt.Errorf(constant.INVALID_MESSAGE_KEY)
	}
	if !utils.IsValidWaID(message.WaID) {
		return nil, false, fmt.Errorf("%s: %q", constant.INVALID_PHONE_NUMBER, message.WaID)
	}

	// Duplicate webhook deliveries are the normal case, not an error.
	existing, err := s.repository.FindByMessageKey(ctx, message.MessageKey)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("message lookup failed: %w", err)
	}

	s.applyDefaults(message)

	if err := s.repository.Create(ctx, message); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent delivery of the same key.
			existing, ferr := s.repository.FindByMessageKey(ctx, message.MessageKey)
			if ferr != nil {
				return nil, false, fmt.Errorf("duplicate message re-read failed: %w", ferr)
			}
			return &existing, false, nil
		}
		return nil, false, fmt.Errorf("message create failed: %w", err)
	}

	unreadDelta := 0
	if message.Direction == constant.DirectionIncoming {
		unreadDelta = 1
	}
	if err := s.contacts.ApplyMessage(ctx, message.WaID, message.Body, message.Timestamp, unreadDelta); err != nil {
		// The message is durable; a failed aggregate update must not
		// fail the store call.
		log.Printf("[error] contact stats update failed for %s: %v", message.WaID, err)
	}

	return message, true, nil
}

// applyDefaults fills status, endpoints and bookkeeping fields of a
// first-seen message. Outgoing messages default to sent, incoming to
// delivered (the receiving side has the message as soon as the webhook
// reports it).
func (s *service) applyDefaults(message *entities.Message) {
	if message.Status == "" {
		if message.Direction == constant.DirectionOutgoing {
			message.Status = constant.StatusSent
		} else {
			message.Status = constant.StatusDelivered
		}
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if message.FromNumber == "" {
		message.FromNumber = s.primaryBusinessNumber()
	}
	if message.ToNumber == "" {
		message.ToNumber = message.WaID
	}
	if message.StatusTimestamps == nil {
		message.StatusTimestamps = map[string]time.Time{}
	}
	if _, ok := message.StatusTimestamps[message.Status]; !ok {
		message.StatusTimestamps[message.Status] = message.Timestamp
	}
}

func (s *service) primaryBusinessNumber() string {
	if len(s.conf.BusinessNumbers) == 0 {
		return ""
	}
	return utils.NormalizePhone(s.conf.BusinessNumbers[0])
}

func (s *service) Send(ctx context.Context, req dtos.SendMessageDTO) (*dtos.MessageResponseDTO, error) {
	waID := utils.NormalizePhone(req.PhoneNumber)
	if !utils.IsValidWaID(waID) {
		return nil, fmt.Errorf(constant.INVALID_PHONE_NUMBER)
	}

	now := time.Now().UTC()
	message := &entities.Message{
		MessageKey:          "wamid." + uuid.NewString(),
		WaID:                waID,
		FromNumber:          s.primaryBusinessNumber(),
		ToNumber:            waID,
		Direction:           constant.DirectionOutgoing,
		DirectionConfidence: 100,
		Kind:                constant.KindText,
		Body:                req.Message,
		Timestamp:           now,
		Status:              constant.StatusSending,
	}

	stored, _, err := s.Store(ctx, message)
	if err != nil {
		return nil, err
	}

	// No real transport; the send succeeds locally right away.
	outcome, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:      stored.MessageKey,
		NewStatus:       constant.StatusSent,
		RecipientID:     waID,
		ObservedAt:      time.Now().UTC(),
		SourcePayloadID: "local-send",
	})
	if err != nil {
		log.Printf("[error] failed to advance simulated send %s to sent: %v", stored.MessageKey, err)
	} else if outcome != StatusApplied {
		log.Printf("[info] simulated send %s status outcome: %s", stored.MessageKey, outcome)
	}

	return &dtos.MessageResponseDTO{
		MessageID: stored.MessageKey,
		Timestamp: now.Format(time.RFC3339),
		Status:    constant.StatusSent,
		To:        waID,
	}, nil
}

func (s *service) ListByWaID(ctx context.Context, waID string, pageNumber int) ([]entities.Message, int, error) {
	return s.repository.ListByWaID(ctx, utils.NormalizePhone(waID), pageNumber)
}
