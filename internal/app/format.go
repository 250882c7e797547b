package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/degen8ball/tokengate/internal/domain"
)

const (
	blockDivider = "――――――――――――――"
	maxTopics    = 3
)

// FormatBatch renders one alert message for a batch: a header with the
// aggregate statistics and top topics, then one block per item.
func FormatBatch(b domain.SentimentBatch) string {
	var sb strings.Builder

	ts := time.UnixMilli(b.Timestamp).UTC().Format("2006-01-02 15:04 MST")
	fmt.Fprintf(&sb, "📊 Sentiment Update — %s\n", ts)
	fmt.Fprintf(&sb, "Analyzed %d posts, %d significant\n", b.TotalAnalyzed, b.SignificantCount)
	fmt.Fprintf(&sb, "Avg score %s | Avg credibility %s\n",
		percent(b.Aggregate.AverageScore), percent(b.Aggregate.AverageCredibility))

	if topics := topTopics(b.Aggregate.TopicCounts, maxTopics); len(topics) > 0 {
		parts := make([]string, len(topics))
		for i, t := range topics {
			parts[i] = fmt.Sprintf("%s (%d)", t.Topic, t.Count)
		}
		fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(parts, ", "))
	}

	for _, item := range b.Items {
		sb.WriteString(blockDivider)
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s (@%s)\n", item.DisplayName, item.Handle)
		fmt.Fprintf(&sb, "%s\n", item.Text)
		fmt.Fprintf(&sb, "Score %s | Credibility %s | %s\n",
			percent(item.Score), percent(item.CredibilityScore), item.SentimentLabel)
		fmt.Fprintf(&sb, "❤️ %d  🔁 %d  💬 %d  👁 %d\n",
			item.LikeCount, item.ShareCount, item.ReplyCount, item.ViewCount)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// percent formats a 0..1 fraction as a percentage with one decimal place.
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// topTopics returns the n highest-count topics, ties broken by name for a
// stable rendering.
func topTopics(counts []domain.TopicCount, n int) []domain.TopicCount {
	sorted := make([]domain.TopicCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Topic < sorted[j].Topic
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
