package domain

import "context"

// SentimentBatch is the transport-only payload published by the analysis
// pipeline on the sentiment channel. It is never persisted.
type SentimentBatch struct {
	Timestamp        int64          `json:"timestamp"`
	BatchID          string         `json:"batchId"`
	TotalAnalyzed    int            `json:"totalAnalyzed"`
	SignificantCount int            `json:"significantCount"`
	TargetAccounts   []string       `json:"targetAccounts"`
	Aggregate        BatchAggregate `json:"aggregate"`
	Items            []BatchItem    `json:"items"`
}

// BatchAggregate holds batch-level statistics for the alert header.
type BatchAggregate struct {
	AverageScore       float64      `json:"averageScore"`
	AverageCredibility float64      `json:"averageCredibility"`
	TopicCounts        []TopicCount `json:"topicCounts"`
}

// TopicCount pairs a topic with the number of items mentioning it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// BatchItem is one analyzed post within a batch.
type BatchItem struct {
	DisplayName      string  `json:"displayName"`
	Handle           string  `json:"handle"`
	Text             string  `json:"text"`
	Score            float64 `json:"score"`
	CredibilityScore float64 `json:"credibilityScore"`
	SentimentLabel   string  `json:"sentimentLabel"`
	LikeCount        int     `json:"likeCount"`
	ShareCount       int     `json:"shareCount"`
	ReplyCount       int     `json:"replyCount"`
	ViewCount        int     `json:"viewCount"`
}

// BatchSubscriber delivers raw sentiment-batch payloads from the broker.
// Subscribe is called once for the lifetime of the process; the returned
// channel is closed when the subscription ends.
type BatchSubscriber interface {
	Subscribe(ctx context.Context) (<-chan string, error)
	// Close tears the subscription down. Idempotent.
	Close() error
}
