package messages

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/entities"
	"github.com/wacrm/pkg/utils"
	"gorm.io/gorm"
)

// ErrInvalidStatusEvent marks a status event that can never succeed:
// missing identifier, unknown status name or an unusable recipient.
// Not transient, so the orchestrator does not spend retries on it.
var ErrInvalidStatusEvent = errors.New("invalid status event")

// StatusEvent is one asynchronous delivery/read/failed transition as
// reported by the source system.
type StatusEvent struct {
	ExternalID      string
	AlternateID     string
	NewStatus       string
	RecipientID     string
	ObservedAt      time.Time
	SourcePayloadID string
	ErrorMessage    string
}

// ReconcileOutcome describes what applying a status event did.
type ReconcileOutcome string

const (
	// StatusApplied advanced the message status.
	StatusApplied ReconcileOutcome = "applied"
	// StatusStale left the status untouched because the event would
	// move it backwards; the observation is still recorded in history.
	StatusStale ReconcileOutcome = "stale"
	// PlaceholderCreated stored a synthetic message because the event
	// referenced an unknown key.
	PlaceholderCreated ReconcileOutcome = "placeholder"
	// StatusDropped discarded a failure event for an unknown message.
	StatusDropped ReconcileOutcome = "dropped"
)

// statusRank orders the happy-path statuses so stale events cannot
// regress a message. Failed is handled separately and always applies.
var statusRank = map[string]int{
	constant.StatusSending:   0,
	constant.StatusSent:      1,
	constant.StatusDelivered: 2,
	constant.StatusRead:      3,
}

func (s *service) ApplyStatus(ctx context.Context, event StatusEvent) (ReconcileOutcome, error) {
	if event.ExternalID == "" && event.AlternateID == "" {
		return "", fmt.Errorf("%w: missing message identifier", ErrInvalidStatusEvent)
	}
	if !validStatus(event.NewStatus) {
		return "", fmt.Errorf("%w: unknown status %q for message %s", ErrInvalidStatusEvent, event.NewStatus, event.ExternalID)
	}
	if event.ObservedAt.IsZero() {
		event.ObservedAt = time.Now().UTC()
	}

	message, err := s.repository.FindByAnyKey(ctx, event.ExternalID, event.AlternateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.reconcileUnknown(ctx, event)
	}
	if err != nil {
		return "", fmt.Errorf("status lookup failed: %w", err)
	}

	return s.reconcileKnown(ctx, &message, event)
}

func (s *service) reconcileKnown(ctx context.Context, message *entities.Message, event StatusEvent) (ReconcileOutcome, error) {
	previous := message.Status
	advance := event.NewStatus == constant.StatusFailed ||
		statusRank[event.NewStatus] > statusRank[previous]

	// Every observation lands in the audit log, advanced or not.
	message.StatusHistory = append(message.StatusHistory, entities.StatusChange{
		FromStatus:      previous,
		ToStatus:        event.NewStatus,
		ObservedAt:      event.ObservedAt,
		SourcePayloadID: event.SourcePayloadID,
	})
	if message.StatusTimestamps == nil {
		message.StatusTimestamps = map[string]time.Time{}
	}
	if _, ok := message.StatusTimestamps[event.NewStatus]; !ok {
		message.StatusTimestamps[event.NewStatus] = event.ObservedAt
	}
	if advance {
		message.Status = event.NewStatus
	}

	if err := s.repository.SaveStatus(ctx, message); err != nil {
		return "", fmt.Errorf("status update failed for %s: %w", message.MessageKey, err)
	}

	if !advance {
		log.Printf("[info] stale status %s ignored for message %s (current %s)",
			event.NewStatus, message.MessageKey, previous)
		return StatusStale, nil
	}

	if event.NewStatus == constant.StatusRead && message.Direction == constant.DirectionOutgoing {
		if err := s.contacts.MarkRead(ctx, message.WaID); err != nil {
			log.Printf("[error] unread reset failed for %s: %v", message.WaID, err)
		}
	}

	return StatusApplied, nil
}

// reconcileUnknown handles a status event whose message never arrived.
// A failure for an unknown message is dropped; anything else creates a
// placeholder record so later queries and statistics stay consistent.
func (s *service) reconcileUnknown(ctx context.Context, event StatusEvent) (ReconcileOutcome, error) {
	if event.NewStatus == constant.StatusFailed {
		log.Printf("[info] dropped failed status for unknown message %s: %s",
			event.ExternalID, event.ErrorMessage)
		return StatusDropped, nil
	}

	waID := utils.NormalizePhone(event.RecipientID)
	if !utils.IsValidWaID(waID) {
		return "", fmt.Errorf("%w: cannot create placeholder for %s, %s %q",
			ErrInvalidStatusEvent, event.ExternalID, constant.INVALID_PHONE_NUMBER, event.RecipientID)
	}

	key := event.ExternalID
	if key == "" {
		key = event.AlternateID
	}

	placeholder := &entities.Message{
		MessageKey:          key,
		WaID:                waID,
		Direction:           constant.DirectionOutgoing,
		DirectionConfidence: 0,
		Kind:                constant.KindText,
		Body:                constant.PlaceholderBody,
		Timestamp:           event.ObservedAt,
		Status:              event.NewStatus,
		StatusTimestamps:    map[string]time.Time{event.NewStatus: event.ObservedAt},
		StatusHistory: []entities.StatusChange{{
			FromStatus:      "",
			ToStatus:        event.NewStatus,
			ObservedAt:      event.ObservedAt,
			SourcePayloadID: event.SourcePayloadID,
		}},
	}

	// Store folds a duplicate-key race into the already-exists case, so
	// two racing status events produce exactly one placeholder.
	_, wasNew, err := s.Store(ctx, placeholder)
	if err != nil {
		return "", fmt.Errorf("placeholder create failed for %s: %w", key, err)
	}
	if !wasNew {
		log.Printf("[info] placeholder for %s already existed", key)
	}
	return PlaceholderCreated, nil
}

func validStatus(status string) bool {
	switch status {
	case constant.StatusSending, constant.StatusSent, constant.StatusDelivered,
		constant.StatusRead, constant.StatusFailed:
		return true
	}
	return false
}
