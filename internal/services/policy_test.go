package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

func testPolicy() *Policy {
	return &Policy{PenaltyFlag: 10, Advice: 5, ProblemSolved: 10}
}

func TestPolicyFlaggedAuthor(t *testing.T) {
	d := testPolicy().Evaluate(models.ClassificationResult{
		Flagged: true,
		Reasons: []string{"abuse"},
	}, false, false, false)

	assert.Equal(t, -10, d.AuthorDelta)
	assert.True(t, d.RecordFlag)
	assert.Equal(t, []string{"abuse"}, d.FlagReasons)
	assert.Nil(t, d.AuthorNotice)
	assert.Zero(t, d.HelperDelta)
}

func TestPolicyFlaggedExemptAuthorIsUntouched(t *testing.T) {
	d := testPolicy().Evaluate(models.ClassificationResult{
		Flagged: true,
		Reasons: []string{"profanity"},
	}, true, false, false)

	assert.Zero(t, d.AuthorDelta)
	assert.False(t, d.RecordFlag)
}

func TestPolicyGoodAdviceRewardsAuthor(t *testing.T) {
	d := testPolicy().Evaluate(models.ClassificationResult{GoodAdvice: true}, false, false, false)

	assert.Equal(t, 5, d.AuthorDelta)
	require.NotNil(t, d.AuthorNotice)
	assert.Equal(t, "Good advice", d.AuthorNotice.Reason)
	assert.Equal(t, 5, d.AuthorNotice.Amount)
}

func TestPolicyDualEffect(t *testing.T) {
	// A single message can both cost its author and pay its helper. The
	// author's penalty and advice reward accumulate into one delta.
	d := testPolicy().Evaluate(models.ClassificationResult{
		Flagged:       true,
		Reasons:       []string{"harassment"},
		GoodAdvice:    true,
		ProblemSolved: true,
	}, false, true, false)

	assert.Equal(t, -5, d.AuthorDelta)
	assert.True(t, d.RecordFlag)
	assert.Equal(t, 10, d.HelperDelta)
}

func TestPolicyPraisePaysLikeProblemSolved(t *testing.T) {
	solved := testPolicy().Evaluate(models.ClassificationResult{ProblemSolved: true}, false, true, false)
	praised := testPolicy().Evaluate(models.ClassificationResult{Praise: true}, false, true, false)

	assert.Equal(t, solved.HelperDelta, praised.HelperDelta)

	both := testPolicy().Evaluate(models.ClassificationResult{ProblemSolved: true, Praise: true}, false, true, false)
	assert.Equal(t, 20, both.HelperDelta)
	require.NotNil(t, both.HelperNotice)
	assert.Equal(t, "Problem solved, Praise received", both.HelperNotice.Reason)
}

func TestPolicyHelperRewardNeedsHelper(t *testing.T) {
	d := testPolicy().Evaluate(models.ClassificationResult{ProblemSolved: true, Praise: true}, false, false, false)

	assert.Zero(t, d.HelperDelta)
	assert.Nil(t, d.HelperNotice)
}

func TestPolicyNeutralResultDoesNothing(t *testing.T) {
	d := testPolicy().Evaluate(models.NeutralClassification(), false, true, false)

	assert.Zero(t, d.AuthorDelta)
	assert.Zero(t, d.HelperDelta)
	assert.False(t, d.RecordFlag)
	assert.Nil(t, d.AuthorNotice)
	assert.Nil(t, d.HelperNotice)
}
