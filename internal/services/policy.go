package services

import (
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// Policy computes ledger deltas and notice material from a classification.
// It is pure: no I/O, no clock, no store access.
type Policy struct {
	PenaltyFlag   int
	Advice        int
	ProblemSolved int
}

// RewardNotice describes one earned reward; the engine turns it into a
// notification intent once the post-apply total is known.
type RewardNotice struct {
	Amount   int
	Reason   string
	Reaction string
}

// PolicyDecision is the accumulated outcome for one event. Rules fire
// independently: a single message can both cost its author a penalty and earn
// its helper a reward.
type PolicyDecision struct {
	AuthorDelta int
	HelperDelta int

	// RecordFlag means the orchestrator must append a flag record and bump
	// the flag counter before applying deltas.
	RecordFlag  bool
	FlagReasons []string

	AuthorNotice *RewardNotice
	HelperNotice *RewardNotice
}

// Evaluate applies the reward/penalty rules:
//   - flagged and author not exempt: author loses PenaltyFlag, flag recorded
//   - good_advice: author gains Advice
//   - problem_solved: helper gains ProblemSolved
//   - praise: helper gains ProblemSolved (praise pays the same as a solve)
//
// Deltas for the same subject accumulate into a single value; helper rewards
// are dropped when no helper was resolved. helperExempt is accepted for
// signature completeness; exemption never blocks rewards.
func (p *Policy) Evaluate(res models.ClassificationResult, authorExempt, hasHelper, helperExempt bool) PolicyDecision {
	_ = helperExempt

	var d PolicyDecision

	if res.Flagged && !authorExempt {
		d.AuthorDelta -= p.PenaltyFlag
		d.RecordFlag = true
		d.FlagReasons = res.Reasons
	}

	if res.GoodAdvice {
		d.AuthorDelta += p.Advice
		d.AuthorNotice = &RewardNotice{
			Amount:   p.Advice,
			Reason:   "Good advice",
			Reaction: "❤️",
		}
	}

	if hasHelper {
		var reasons []string
		if res.ProblemSolved {
			d.HelperDelta += p.ProblemSolved
			reasons = append(reasons, "Problem solved")
		}
		if res.Praise {
			d.HelperDelta += p.ProblemSolved
			reasons = append(reasons, "Praise received")
		}
		if d.HelperDelta > 0 {
			d.HelperNotice = &RewardNotice{
				Amount:   d.HelperDelta,
				Reason:   joinReasons(reasons),
				Reaction: "✅",
			}
		}
	}

	return d
}

func joinReasons(reasons []string) string {
	switch len(reasons) {
	case 0:
		return "Contribution recognized"
	case 1:
		return reasons[0]
	default:
		out := reasons[0]
		for _, r := range reasons[1:] {
			out += ", " + r
		}
		return out
	}
}
