package webhook

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wacrm/pkg/constant"
)

const (
	businessNumber = "14155550100"
	partnerNumber  = "919876543210"
)

func baseInput() DirectionInput {
	return DirectionInput{
		DisplayPhoneNumber: businessNumber,
		BusinessNumbers:    []string{businessNumber},
	}
}

func TestResolveDirection_BusinessFrom(t *testing.T) {
	in := baseInput()
	in.From = businessNumber
	in.To = partnerNumber

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Direction != constant.DirectionOutgoing || got.WaID != partnerNumber || got.Confidence != ConfidenceExplicit {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveDirection_BusinessTo(t *testing.T) {
	in := baseInput()
	in.From = partnerNumber
	in.To = businessNumber

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Direction != constant.DirectionIncoming || got.WaID != partnerNumber || got.Confidence != ConfidenceExplicit {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveDirection_FromOnly(t *testing.T) {
	in := baseInput()
	in.From = partnerNumber

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Direction != constant.DirectionIncoming || got.WaID != partnerNumber || got.Confidence != ConfidenceFromOnly {
		t.Fatalf("got %+v", got)
	}
	// Missing to defaults to the waId.
	if got.ToNumber != partnerNumber {
		t.Fatalf("ToNumber = %q", got.ToNumber)
	}
}

func TestResolveDirection_SecondaryBusinessFallback(t *testing.T) {
	// from is a configured business number but not the payload's primary
	// and to is unusable: steps 1-3 miss, 4a compares against the
	// primary only and resolves at reduced confidence.
	secondary := "14155550199"
	in := DirectionInput{
		From:               secondary,
		To:                 "undefined",
		DisplayPhoneNumber: businessNumber,
		BusinessNumbers:    []string{businessNumber, secondary},
	}

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != ConfidencePrimaryCmp || got.WaID != secondary || got.Direction != constant.DirectionIncoming {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveDirection_ToOnlyFallback(t *testing.T) {
	in := baseInput()
	in.To = partnerNumber

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Direction != constant.DirectionOutgoing || got.WaID != partnerNumber || got.Confidence != ConfidencePrimaryCmp {
		t.Fatalf("got %+v", got)
	}
	// Missing from defaults to the primary business number.
	if got.FromNumber != businessNumber {
		t.Fatalf("FromNumber = %q", got.FromNumber)
	}
}

func TestResolveDirection_ContextHint(t *testing.T) {
	in := baseInput()
	in.ContextHint = fmt.Sprintf("payload-%s-2024", partnerNumber)

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.WaID != partnerNumber || got.Confidence != ConfidenceHint {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveDirection_HintSkipsBusinessNumbers(t *testing.T) {
	in := baseInput()
	in.ContextHint = fmt.Sprintf("conv-%s-%s", businessNumber, partnerNumber)

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.WaID != partnerNumber {
		t.Fatalf("hint should skip the business number, got %+v", got)
	}
}

func TestResolveDirection_SyntheticFromTimestamp(t *testing.T) {
	ts := time.Unix(1712345678, 0).UTC()
	in := baseInput()
	in.Timestamp = ts

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != ConfidenceSynthetic {
		t.Fatalf("got %+v", got)
	}
	want := fmt.Sprintf("99%011d", ts.Unix())
	if got.WaID != want {
		t.Fatalf("WaID = %q, want %q", got.WaID, want)
	}

	// Deterministic: same input, same waId.
	again, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if again.WaID != got.WaID {
		t.Fatalf("synthetic waId not deterministic: %q vs %q", again.WaID, got.WaID)
	}
}

func TestResolveDirection_Unresolved(t *testing.T) {
	in := baseInput()

	_, err := ResolveDirection(in)
	if !errors.Is(err, ErrDirectionUnresolved) {
		t.Fatalf("expected ErrDirectionUnresolved, got %v", err)
	}
}

func TestResolveDirection_UnusableSentinelStrings(t *testing.T) {
	in := baseInput()
	in.From = "undefined"
	in.To = "null"

	_, err := ResolveDirection(in)
	if !errors.Is(err, ErrDirectionUnresolved) {
		t.Fatalf("expected ErrDirectionUnresolved, got %v", err)
	}
}

func TestResolveDirection_NormalizesEndpoints(t *testing.T) {
	in := baseInput()
	in.From = "+1 (415) 555-0100"
	in.To = "+91 98765 43210"

	got, err := ResolveDirection(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.FromNumber != businessNumber || got.ToNumber != partnerNumber || got.WaID != partnerNumber {
		t.Fatalf("got %+v", got)
	}
}
