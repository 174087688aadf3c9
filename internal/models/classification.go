package models

// ClassificationResult is what the content oracle says about one message.
// All-false with no reasons is the neutral result used whenever the oracle
// cannot be reached or answers garbage.
type ClassificationResult struct {
	Flagged       bool     `json:"flagged"`
	Reasons       []string `json:"reasons"`
	GoodAdvice    bool     `json:"good_advice"`
	ProblemSolved bool     `json:"problem_solved"`
	Praise        bool     `json:"praise"`
}

// NeutralClassification returns the do-nothing result.
func NeutralClassification() ClassificationResult {
	return ClassificationResult{Reasons: []string{}}
}
