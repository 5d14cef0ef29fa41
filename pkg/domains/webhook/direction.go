package webhook

import (
	"fmt"
	"regexp"
	"time"

	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/utils"
)

// Direction confidence levels. 100 means the business number appeared
// explicitly in from or to; everything lower marks a heuristic fallback.
const (
	ConfidenceExplicit   = 100
	ConfidenceFromOnly   = 80
	ConfidencePrimaryCmp = 60
	ConfidenceHint       = 40
	ConfidenceSynthetic  = 20
)

// DirectionInput carries everything the resolver may consult: the raw
// endpoints, the payload's declared business number, the configured
// business number set and contextual fallbacks.
type DirectionInput struct {
	From               string
	To                 string
	DisplayPhoneNumber string
	BusinessNumbers    []string
	// ContextHint is an opaque identifier string (typically the payload
	// id) that sometimes embeds the conversation partner's number.
	ContextHint string
	// Timestamp backs the last-resort synthetic waId.
	Timestamp time.Time
}

// DirectionResolution is the tagged result of a successful resolution.
type DirectionResolution struct {
	WaID       string
	Direction  string
	FromNumber string
	ToNumber   string
	Confidence int
}

func (r DirectionResolution) IsOutgoing() bool {
	return r.Direction == constant.DirectionOutgoing
}

var hintNumberPattern = regexp.MustCompile(`[1-9]\d{9,14}`)

// ResolveDirection decides whether a message is incoming or outgoing and
// which conversation it belongs to. The decision table is priority
// ordered and the first match wins:
//
//  1. from is a business number        -> outgoing, waId = to,   100
//  2. to is a business number          -> incoming, waId = from, 100
//  3. from present, not business       -> incoming, waId = from,  80
//  4. fallbacks: primary-number comparison (60), contextual hint (40),
//     synthetic waId from the timestamp (20)
//
// The synthetic step is a degraded never-fully-fail fallback kept for
// behavioral parity with already-ingested data, not a correctness
// guarantee. When even that fails the message is rejected with
// ErrDirectionUnresolved.
func ResolveDirection(in DirectionInput) (DirectionResolution, error) {
	from := ""
	if utils.IsUsablePhoneField(in.From) {
		from = utils.NormalizePhone(in.From)
	}
	to := ""
	if utils.IsUsablePhoneField(in.To) {
		to = utils.NormalizePhone(in.To)
	}
	primary := utils.NormalizePhone(in.DisplayPhoneNumber)

	business := make(map[string]bool, len(in.BusinessNumbers)+1)
	for _, n := range in.BusinessNumbers {
		if normalized := utils.NormalizePhone(n); normalized != "" {
			business[normalized] = true
		}
	}
	if primary != "" {
		business[primary] = true
	}
	if primary == "" && len(in.BusinessNumbers) > 0 {
		primary = utils.NormalizePhone(in.BusinessNumbers[0])
	}

	// 1. Business number sent the message.
	if from != "" && business[from] && utils.IsValidWaID(to) {
		return resolution(to, constant.DirectionOutgoing, from, to, ConfidenceExplicit, primary), nil
	}

	// 2. Business number received the message.
	if to != "" && business[to] && utils.IsValidWaID(from) {
		return resolution(from, constant.DirectionIncoming, from, to, ConfidenceExplicit, primary), nil
	}

	// 3. A sender that is not the business is the conversation partner.
	if from != "" && !business[from] && utils.IsValidWaID(from) {
		return resolution(from, constant.DirectionIncoming, from, to, ConfidenceFromOnly, primary), nil
	}

	// 4a/4b. Compare against the primary number only.
	if from != "" && from != primary && utils.IsValidWaID(from) {
		return resolution(from, constant.DirectionIncoming, from, to, ConfidencePrimaryCmp, primary), nil
	}
	if to != "" && to != primary && utils.IsValidWaID(to) {
		return resolution(to, constant.DirectionOutgoing, from, to, ConfidencePrimaryCmp, primary), nil
	}

	// 4c. A recognizable number embedded in the contextual hint.
	if waID := extractHintedWaID(in.ContextHint, business); waID != "" {
		return resolution(waID, constant.DirectionIncoming, from, to, ConfidenceHint, primary), nil
	}

	// 4d. Synthesize a waId from the message timestamp. Deterministic,
	// known data-quality source; direction is fixed to incoming.
	if !in.Timestamp.IsZero() {
		waID := fmt.Sprintf("99%011d", in.Timestamp.Unix())
		return resolution(waID, constant.DirectionIncoming, from, to, ConfidenceSynthetic, primary), nil
	}

	return DirectionResolution{}, fmt.Errorf("%w: from=%q to=%q", ErrDirectionUnresolved, in.From, in.To)
}

// resolution normalizes the endpoints: a missing from defaults to the
// primary business number, a missing to defaults to the waId.
func resolution(waID, direction, from, to string, confidence int, primary string) DirectionResolution {
	if from == "" {
		from = primary
	}
	if to == "" {
		to = waID
	}
	return DirectionResolution{
		WaID:       waID,
		Direction:  direction,
		FromNumber: from,
		ToNumber:   to,
		Confidence: confidence,
	}
}

// extractHintedWaID scans an opaque identifier for an embedded phone
// number that is valid as a waId and does not belong to the business.
func extractHintedWaID(hint string, business map[string]bool) string {
	if hint == "" {
		return ""
	}
	for _, candidate := range hintNumberPattern.FindAllString(hint, -1) {
		if utils.IsValidWaID(candidate) && !business[candidate] {
			return candidate
		}
	}
	return ""
}
