package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wacrm/pkg/config"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/domains/messages"
	"github.com/wacrm/pkg/dtos"
	"github.com/wacrm/pkg/entities"
	"github.com/wacrm/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Processing stages reported in per-item errors.
const (
	StageContact = "contact"
	StageMessage = "message"
	StageStatus  = "status"
)

type Service interface {
	// ProcessPayload ingests one webhook payload. Per change it applies
	// a fixed ordering contract: contacts before messages before
	// statuses. Messages run in bounded-concurrency batches; statuses
	// run sequentially in array order. Item failures are isolated and
	// reported in the result, never propagated to siblings.
	ProcessPayload(ctx context.Context, payload *dtos.WebhookPayload) (*dtos.BatchResult, error)

	// ProcessDirectory runs every *.json payload in dir, status-only
	// files last. Abortable between payloads via ctx.
	ProcessDirectory(ctx context.Context, dir string) ([]*dtos.BatchResult, error)
}

type service struct {
	messages messages.Service
	contacts contacts.Service
	conf     config.WhatsApp
}

func NewService(m messages.Service, c contacts.Service, conf config.WhatsApp) Service {
	conf.ApplyDefaults()
	return &service{
		messages: m,
		contacts: c,
		conf:     conf,
	}
}

// accumulator collects per-run counters and errors. Batch workers share
// it under a mutex; nothing survives the run.
type accumulator struct {
	mu     sync.Mutex
	result dtos.BatchResult
}

func (a *accumulator) addError(externalID, stage string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Errors = append(a.result.Errors, dtos.ItemError{
		ExternalID: externalID,
		Stage:      stage,
		Message:    err.Error(),
	})
}

func (a *accumulator) count(update func(r *dtos.BatchResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	update(&a.result)
}

func (s *service) ProcessPayload(ctx context.Context, payload *dtos.WebhookPayload) (*dtos.BatchResult, error) {
	if payload == nil || payload.MetaData.Entry == nil {
		return nil, fmt.Errorf("%w: missing entry array", ErrMalformedPayload)
	}

	acc := &accumulator{result: dtos.BatchResult{PayloadID: payload.ID}}

	for _, entry := range payload.MetaData.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			s.processChange(ctx, payload.ID, &change, acc)
		}
	}

	result := acc.result
	log.Printf("[info] payload %s processed: %d stored, %d duplicates, %d statuses, %d placeholders, %d errors",
		payload.ID, result.MessagesStored, result.DuplicateMessages,
		result.StatusesApplied, result.PlaceholdersCreated, len(result.Errors))
	return &result, nil
}

func (s *service) processChange(ctx context.Context, payloadID string, change *dtos.WebhookChange, acc *accumulator) {
	value := &change.Value

	// Contacts first: message storage assumes the conversation partner
	// record exists.
	for _, contact := range value.Contacts {
		if err := s.contacts.Upsert(ctx, contact.WaID, contact.Profile.Name); err != nil {
			log.Printf("[error] contact upsert failed for %s: %v", contact.WaID, err)
			acc.addError(contact.WaID, StageContact, err)
			continue
		}
		acc.count(func(r *dtos.BatchResult) { r.ContactsTouched++ })
	}

	// Messages in bounded-concurrency batches. Workers record their own
	// outcomes; a failed item never cancels its siblings.
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.conf.BatchSize)
	for i := range value.Messages {
		message := &value.Messages[i]
		group.Go(func() error {
			s.processMessage(groupCtx, payloadID, value, message, acc)
			return nil
		})
	}
	group.Wait()

	// Statuses sequentially: events for the same message depend on the
	// order they appear in the array.
	for i := range value.Statuses {
		s.processStatus(ctx, payloadID, &value.Statuses[i], acc)
	}
}

func (s *service) processMessage(ctx context.Context, payloadID string, value *dtos.WebhookChangeValue, raw *dtos.WebhookMessage, acc *accumulator) {
	resolution, err := ResolveDirection(DirectionInput{
		From:               raw.From,
		To:                 raw.To,
		DisplayPhoneNumber: value.Metadata.DisplayPhoneNumber,
		BusinessNumbers:    s.conf.BusinessNumbers,
		ContextHint:        payloadID,
		Timestamp:          utils.ParseTimestamp(raw.Timestamp),
	})
	if err != nil {
		log.Printf("[error] skipping message %s: %v", raw.ID, err)
		acc.addError(raw.ID, StageMessage, err)
		return
	}

	body, kind, media := ExtractContent(raw)
	direction := constant.DirectionIncoming
	if resolution.IsOutgoing() {
		direction = constant.DirectionOutgoing
	}

	message := &entities.Message{
		MessageKey:          raw.ID,
		WaID:                resolution.WaID,
		FromNumber:          resolution.FromNumber,
		ToNumber:            resolution.ToNumber,
		Direction:           direction,
		DirectionConfidence: resolution.Confidence,
		Kind:                kind,
		Body:                body,
		Timestamp:           utils.ParseTimestamp(raw.Timestamp),
		Media:               media,
	}

	_, wasNew, err := s.messages.Store(ctx, message)
	if err != nil {
		log.Printf("[error] message store failed for %s: %v", raw.ID, err)
		acc.addError(raw.ID, StageMessage, err)
		return
	}

	acc.count(func(r *dtos.BatchResult) {
		if wasNew {
			r.MessagesStored++
		} else {
			r.DuplicateMessages++
		}
	})
}

// processStatus applies one status event with a bounded linear-backoff
// retry on transient storage errors. Exhausting the budget records the
// event as permanently failed; the batch moves on either way.
func (s *service) processStatus(ctx context.Context, payloadID string, raw *dtos.WebhookStatus, acc *accumulator) {
	event := messages.StatusEvent{
		ExternalID:      raw.ID,
		AlternateID:     raw.MessageID,
		NewStatus:       raw.Status,
		RecipientID:     raw.RecipientID,
		ObservedAt:      utils.ParseTimestamp(raw.Timestamp),
		SourcePayloadID: payloadID,
	}
	if raw.Error != nil {
		event.ErrorMessage = raw.Error.Message
	}

	interval := time.Duration(s.conf.StatusRetryIntervalMs) * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= s.conf.StatusRetryAttempts; attempt++ {
		outcome, err := s.messages.ApplyStatus(ctx, event)
		if err == nil {
			acc.count(func(r *dtos.BatchResult) {
				switch outcome {
				case messages.PlaceholderCreated:
					r.PlaceholdersCreated++
				case messages.StatusDropped:
					r.StatusesDropped++
				default:
					r.StatusesApplied++
				}
			})
			return
		}
		lastErr = err
		if errors.Is(err, messages.ErrInvalidStatusEvent) {
			// Retrying cannot fix a malformed event.
			break
		}
		log.Printf("[error] status apply attempt %d/%d failed for %s: %v",
			attempt, s.conf.StatusRetryAttempts, raw.ID, err)

		if attempt == s.conf.StatusRetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			acc.addError(raw.ID, StageStatus, ctx.Err())
			return
		case <-time.After(time.Duration(attempt) * interval):
		}
	}

	acc.addError(raw.ID, StageStatus, lastErr)
}
