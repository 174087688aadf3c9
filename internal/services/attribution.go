package services

import (
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// HelperOutcome makes the attribution result explicit: either a helper was
// found, nobody qualifies, or the only candidate was the author themselves
// (self-reward is disallowed unconditionally).
type HelperOutcome int

const (
	NoHelper HelperOutcome = iota
	ResolvedHelper
	SelfReferenceRejected
)

func (o HelperOutcome) String() string {
	switch o {
	case ResolvedHelper:
		return "resolved"
	case SelfReferenceRejected:
		return "self_reference_rejected"
	default:
		return "none"
	}
}

// HelperResolution is the outcome of attribution; Helper is only meaningful
// when Outcome is ResolvedHelper.
type HelperResolution struct {
	Outcome HelperOutcome
	Helper  models.Account
}

// ResolveHelper picks the member credited for a message. A reply to a known
// non-bot account wins; a reply to the author themselves is rejected outright
// without falling back to mentions. Otherwise the first mentioned non-bot
// account other than the author is the helper.
func ResolveHelper(ev *models.MessageEvent) HelperResolution {
	if ev.ReplyTo != nil && ev.ReplyTo.ID != "" && !ev.ReplyTo.Bot {
		if ev.ReplyTo.ID == ev.Author.ID {
			return HelperResolution{Outcome: SelfReferenceRejected}
		}
		return HelperResolution{Outcome: ResolvedHelper, Helper: *ev.ReplyTo}
	}

	for _, m := range ev.Mentions {
		if m.Bot || m.ID == "" || m.ID == ev.Author.ID {
			continue
		}
		return HelperResolution{Outcome: ResolvedHelper, Helper: m}
	}

	return HelperResolution{Outcome: NoHelper}
}
