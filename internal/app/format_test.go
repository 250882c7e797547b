package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/degen8ball/tokengate/internal/domain"
)

func TestFormatBatch_Header(t *testing.T) {
	text := FormatBatch(testBatch(2))

	assert.Contains(t, text, "Analyzed 10 posts, 2 significant")
	assert.Contains(t, text, "Avg score 72.5%")
	assert.Contains(t, text, "Avg credibility 61.0%")
	assert.Contains(t, text, "Topics: X (5)")
}

func TestFormatBatch_TopThreeTopicsByCount(t *testing.T) {
	b := testBatch(2)
	b.Aggregate.TopicCounts = []domain.TopicCount{
		{Topic: "low", Count: 1},
		{Topic: "top", Count: 9},
		{Topic: "mid", Count: 4},
		{Topic: "high", Count: 7},
	}

	text := FormatBatch(b)

	assert.Contains(t, text, "Topics: top (9), high (7), mid (4)")
	assert.NotContains(t, text, "low (1)")
}

func TestFormatBatch_ItemBlocks(t *testing.T) {
	b := testBatch(2)
	b.Items = append(b.Items, domain.BatchItem{
		DisplayName:      "Grace",
		Handle:           "grace",
		Text:             "skeptical take",
		Score:            0.123,
		CredibilityScore: 0.456,
		SentimentLabel:   "negative",
		ViewCount:        10,
	})

	text := FormatBatch(b)

	assert.Contains(t, text, "Ada (@ada)")
	assert.Contains(t, text, "Grace (@grace)")
	assert.Contains(t, text, "Score 12.3% | Credibility 45.6% | negative")
	assert.Equal(t, 2, strings.Count(text, blockDivider), "one divider per item block")
}

func TestFormatBatch_NoTopicsLineWhenEmpty(t *testing.T) {
	b := testBatch(1)
	b.Aggregate.TopicCounts = nil

	assert.NotContains(t, FormatBatch(b), "Topics:")
}

func TestPercent_OneDecimal(t *testing.T) {
	assert.Equal(t, "100.0%", percent(1))
	assert.Equal(t, "0.0%", percent(0))
	assert.Equal(t, "33.3%", percent(1.0/3.0))
}
