package messages

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/wacrm/pkg/config"
	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/database"
	"github.com/wacrm/pkg/domains/contacts"
	"github.com/wacrm/pkg/dtos"
	"github.com/wacrm/pkg/entities"
	"gorm.io/gorm"
)

const (
	testBusiness = "14155550100"
	testPartner  = "919876543210"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, contacts.Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	conf := config.WhatsApp{BusinessNumbers: []string{testBusiness}}
	conf.ApplyDefaults()
	contactService := contacts.NewService(contacts.NewRepo(db), conf.PreviewMaxLength)
	return NewService(NewRepo(db), contactService, conf), contactService, db
}

func incomingText(key, body string) *entities.Message {
	return &entities.Message{
		MessageKey:          key,
		WaID:                testPartner,
		FromNumber:          testPartner,
		ToNumber:            testBusiness,
		Direction:           constant.DirectionIncoming,
		DirectionConfidence: 100,
		Kind:                constant.KindText,
		Body:                body,
		Timestamp:           time.Now().UTC(),
	}
}

func TestStore_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	first, wasNew, err := s.Store(ctx, incomingText("wamid.1", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if !wasNew {
		t.Fatal("first store should report new")
	}

	// Second delivery with different field values is still a no-op.
	second, wasNew, err := s.Store(ctx, incomingText("wamid.1", "changed body"))
	if err != nil {
		t.Fatal(err)
	}
	if wasNew {
		t.Fatal("duplicate store should not report new")
	}
	if second.ID != first.ID || second.Body != "hello" {
		t.Fatalf("duplicate returned wrong record: %+v", second)
	}
}

func TestStore_DefaultStatuses(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	in, _, err := s.Store(ctx, incomingText("wamid.in", "hi"))
	if err != nil {
		t.Fatal(err)
	}
	if in.Status != constant.StatusDelivered {
		t.Fatalf("incoming default status = %q, want delivered", in.Status)
	}
	if _, ok := in.StatusTimestamps[constant.StatusDelivered]; !ok {
		t.Fatal("status timestamp not initialized")
	}

	out := incomingText("wamid.out", "hi back")
	out.Direction = constant.DirectionOutgoing
	stored, _, err := s.Store(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != constant.StatusSent {
		t.Fatalf("outgoing default status = %q, want sent", stored.Status)
	}
}

func TestStore_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	msg := incomingText("", "no key")
	if _, _, err := s.Store(ctx, msg); err == nil {
		t.Fatal("expected error for empty message key")
	}

	msg = incomingText("wamid.bad", "bad waid")
	msg.WaID = "0123"
	if _, _, err := s.Store(ctx, msg); err == nil {
		t.Fatal("expected error for invalid waId")
	}
}

func TestStore_UpdatesContactAggregates(t *testing.T) {
	ctx := context.Background()
	s, contactService, _ := newTestService(t)

	for i, body := range []string{"one", "two", "three"} {
		msg := incomingText("wamid."+body, body)
		if _, _, err := s.Store(ctx, msg); err != nil {
			t.Fatalf("store %d: %v", i, err)
		}
	}

	contact, err := contactService.GetByWaID(ctx, testPartner)
	if err != nil {
		t.Fatal(err)
	}
	if contact.TotalMessageCount != 3 {
		t.Fatalf("TotalMessageCount = %d, want 3", contact.TotalMessageCount)
	}
	if contact.UnreadCount != 3 {
		t.Fatalf("UnreadCount = %d, want 3", contact.UnreadCount)
	}
	if contact.LastMessagePreview != "three" {
		t.Fatalf("LastMessagePreview = %q, want %q", contact.LastMessagePreview, "three")
	}
}

func TestApplyStatus_AdvancesAndBookkeeps(t *testing.T) {
	ctx := context.Background()
	s, _, db := newTestService(t)

	out := incomingText("wamid.s1", "hi")
	out.Direction = constant.DirectionOutgoing
	if _, _, err := s.Store(ctx, out); err != nil {
		t.Fatal(err)
	}

	observed := time.Now().UTC()
	outcome, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:      "wamid.s1",
		NewStatus:       constant.StatusDelivered,
		ObservedAt:      observed,
		SourcePayloadID: "p1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != StatusApplied {
		t.Fatalf("outcome = %q", outcome)
	}

	msg, err := NewRepo(db).FindByMessageKey(ctx, "wamid.s1")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status != constant.StatusDelivered {
		t.Fatalf("status = %q", msg.Status)
	}
	if len(msg.StatusHistory) != 1 || msg.StatusHistory[0].ToStatus != constant.StatusDelivered {
		t.Fatalf("history = %+v", msg.StatusHistory)
	}
	if msg.StatusHistory[0].SourcePayloadID != "p1" {
		t.Fatalf("history source = %+v", msg.StatusHistory[0])
	}
	if _, ok := msg.StatusTimestamps[constant.StatusDelivered]; !ok {
		t.Fatal("delivered timestamp missing")
	}
}

func TestApplyStatus_FirstTimestampWins(t *testing.T) {
	ctx := context.Background()
	s, _, db := newTestService(t)

	out := incomingText("wamid.ts", "hi")
	out.Direction = constant.DirectionOutgoing
	if _, _, err := s.Store(ctx, out); err != nil {
		t.Fatal(err)
	}

	first := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	for _, at := range []time.Time{first, later} {
		if _, err := s.ApplyStatus(ctx, StatusEvent{
			ExternalID: "wamid.ts",
			NewStatus:  constant.StatusDelivered,
			ObservedAt: at,
		}); err != nil {
			t.Fatal(err)
		}
	}

	msg, err := NewRepo(db).FindByMessageKey(ctx, "wamid.ts")
	if err != nil {
		t.Fatal(err)
	}
	if got := msg.StatusTimestamps[constant.StatusDelivered]; !got.Equal(first) {
		t.Fatalf("delivered timestamp = %v, want first observation %v", got, first)
	}
}

func TestApplyStatus_StaleDoesNotRegress(t *testing.T) {
	ctx := context.Background()
	s, _, db := newTestService(t)

	out := incomingText("wamid.mono", "hi")
	out.Direction = constant.DirectionOutgoing
	if _, _, err := s.Store(ctx, out); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ApplyStatus(ctx, StatusEvent{ExternalID: "wamid.mono", NewStatus: constant.StatusRead}); err != nil {
		t.Fatal(err)
	}
	outcome, err := s.ApplyStatus(ctx, StatusEvent{ExternalID: "wamid.mono", NewStatus: constant.StatusSent})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != StatusStale {
		t.Fatalf("outcome = %q, want stale", outcome)
	}

	msg, err := NewRepo(db).FindByMessageKey(ctx, "wamid.mono")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status != constant.StatusRead {
		t.Fatalf("status regressed to %q", msg.Status)
	}
	// The stale observation is still audited.
	if len(msg.StatusHistory) != 2 {
		t.Fatalf("history = %+v", msg.StatusHistory)
	}
}

func TestApplyStatus_ReadResetsUnread(t *testing.T) {
	ctx := context.Background()
	s, contactService, _ := newTestService(t)

	// Incoming traffic builds up unread count.
	if _, _, err := s.Store(ctx, incomingText("wamid.u1", "a")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Store(ctx, incomingText("wamid.u2", "b")); err != nil {
		t.Fatal(err)
	}

	out := incomingText("wamid.u3", "reply")
	out.Direction = constant.DirectionOutgoing
	if _, _, err := s.Store(ctx, out); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ApplyStatus(ctx, StatusEvent{ExternalID: "wamid.u3", NewStatus: constant.StatusRead}); err != nil {
		t.Fatal(err)
	}

	contact, err := contactService.GetByWaID(ctx, testPartner)
	if err != nil {
		t.Fatal(err)
	}
	if contact.UnreadCount != 0 {
		t.Fatalf("UnreadCount = %d, want 0", contact.UnreadCount)
	}
}

func TestApplyStatus_PlaceholderForUnknownMessage(t *testing.T) {
	ctx := context.Background()
	s, contactService, db := newTestService(t)

	outcome, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:  "wamid.ghost",
		NewStatus:   constant.StatusDelivered,
		RecipientID: testBusiness,
	})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != PlaceholderCreated {
		t.Fatalf("outcome = %q", outcome)
	}

	msg, err := NewRepo(db).FindByMessageKey(ctx, "wamid.ghost")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status != constant.StatusDelivered || msg.Direction != constant.DirectionOutgoing {
		t.Fatalf("placeholder = %+v", msg)
	}
	if msg.Body != constant.PlaceholderBody {
		t.Fatalf("placeholder body = %q", msg.Body)
	}
	if msg.Kind != constant.KindText {
		t.Fatalf("placeholder kind = %q", msg.Kind)
	}

	// Placeholder creation is idempotent via the message key.
	if _, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:  "wamid.ghost",
		NewStatus:   constant.StatusRead,
		RecipientID: testBusiness,
	}); err != nil {
		t.Fatal(err)
	}

	// The invariant holds: the placeholder has a contact record.
	if _, err := contactService.GetByWaID(ctx, testBusiness); err != nil {
		t.Fatalf("placeholder contact missing: %v", err)
	}
}

func TestApplyStatus_FailedUnknownIsDropped(t *testing.T) {
	ctx := context.Background()
	s, _, db := newTestService(t)

	outcome, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:   "m1",
		NewStatus:    constant.StatusFailed,
		RecipientID:  testPartner,
		ErrorMessage: "rejected",
	})
	if err != nil {
		t.Fatal(err)
	}
	if outcome != StatusDropped {
		t.Fatalf("outcome = %q, want dropped", outcome)
	}

	var count int64
	if err := db.Model(&entities.Message{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("no placeholder expected, found %d messages", count)
	}
}

func TestApplyStatus_AlternateIDLookup(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	out := incomingText("wamid.alt", "hi")
	out.Direction = constant.DirectionOutgoing
	if _, _, err := s.Store(ctx, out); err != nil {
		t.Fatal(err)
	}

	outcome, err := s.ApplyStatus(ctx, StatusEvent{
		ExternalID:  "wamid.other",
		AlternateID: "wamid.alt",
		NewStatus:   constant.StatusDelivered,
		RecipientID: testPartner,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Primary misses, the alternate id finds the stored message, so no
	// placeholder is created.
	if outcome != StatusApplied {
		t.Fatalf("outcome = %q", outcome)
	}
}

func TestApplyStatus_InvalidEvents(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	if _, err := s.ApplyStatus(ctx, StatusEvent{NewStatus: constant.StatusRead}); err == nil {
		t.Fatal("expected error for missing identifier")
	}
	if _, err := s.ApplyStatus(ctx, StatusEvent{ExternalID: "x", NewStatus: "teleported"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSend_LocalSimulation(t *testing.T) {
	ctx := context.Background()
	s, contactService, db := newTestService(t)

	resp, err := s.Send(ctx, dtos.SendMessageDTO{PhoneNumber: testPartner, Message: "hello there"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != constant.StatusSent || resp.To != testPartner {
		t.Fatalf("response = %+v", resp)
	}

	msg, err := NewRepo(db).FindByMessageKey(ctx, resp.MessageID)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Direction != constant.DirectionOutgoing || msg.DirectionConfidence != 100 {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Status != constant.StatusSent {
		t.Fatalf("status = %q, want sent", msg.Status)
	}
	if _, ok := msg.StatusTimestamps[constant.StatusSending]; !ok {
		t.Fatal("sending timestamp missing")
	}

	// Outgoing traffic does not raise the unread counter.
	contact, err := contactService.GetByWaID(ctx, testPartner)
	if err != nil {
		t.Fatal(err)
	}
	if contact.UnreadCount != 0 || contact.TotalMessageCount != 1 {
		t.Fatalf("contact = %+v", contact)
	}
}
