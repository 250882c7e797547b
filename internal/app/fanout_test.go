package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degen8ball/tokengate/internal/domain"
)

type fakeSubscriber struct {
	mu         sync.Mutex
	ch         chan string
	subscribed int
	closed     int
	subErr     error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{ch: make(chan string, 16)}
}

func (s *fakeSubscriber) Subscribe(_ context.Context) (<-chan string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subErr != nil {
		return nil, s.subErr
	}
	s.subscribed++
	return s.ch, nil
}

func (s *fakeSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSubscriber) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type sentMessage struct {
	ChatID string
	Text   string
}

type fakeAlertSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *fakeAlertSender) SendMessage(_ context.Context, chatID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (s *fakeAlertSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func testBatch(significant int) domain.SentimentBatch {
	return domain.SentimentBatch{
		Timestamp:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
		BatchID:          "batch-1",
		TotalAnalyzed:    10,
		SignificantCount: significant,
		Aggregate: domain.BatchAggregate{
			AverageScore:       0.725,
			AverageCredibility: 0.61,
			TopicCounts:        []domain.TopicCount{{Topic: "X", Count: 5}},
		},
		Items: []domain.BatchItem{
			{
				DisplayName:      "Ada",
				Handle:           "ada",
				Text:             "interesting development",
				Score:            0.9,
				CredibilityScore: 0.8,
				SentimentLabel:   "positive",
				LikeCount:        12,
				ShareCount:       3,
				ReplyCount:       1,
				ViewCount:        400,
			},
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestFanout_DeliversSignificantBatch(t *testing.T) {
	sub := newFakeSubscriber()
	sender := &fakeAlertSender{}
	f := NewFanout(sub, sender, "123456")

	require.NoError(t, f.Start(context.Background()))
	sub.ch <- mustJSON(t, testBatch(2))

	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	msg := sender.messages()[0]
	assert.Equal(t, "-100123456", msg.ChatID, "bare id must be normalized to supergroup form")
	assert.Contains(t, msg.Text, "X (5)")
	assert.Contains(t, msg.Text, "72.5%")
}

func TestFanout_SuppressesEmptyBatch(t *testing.T) {
	sub := newFakeSubscriber()
	sender := &fakeAlertSender{}
	f := NewFanout(sub, sender, "123456")

	require.NoError(t, f.Start(context.Background()))

	empty := domain.SentimentBatch{SignificantCount: 0, Items: nil}
	sub.ch <- mustJSON(t, empty)
	// A significant batch behind it proves the empty one was consumed.
	sub.ch <- mustJSON(t, testBatch(1))

	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, sender.messages()[0].Text, "1 significant")
}

func TestFanout_SuppressesWithoutDestination(t *testing.T) {
	sub := newFakeSubscriber()
	sender := &fakeAlertSender{}
	f := NewFanout(sub, sender, "")

	require.NoError(t, f.Start(context.Background()))
	sub.ch <- mustJSON(t, testBatch(2))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sender.messages())
}

func TestFanout_DropsMalformedPayload(t *testing.T) {
	sub := newFakeSubscriber()
	sender := &fakeAlertSender{}
	f := NewFanout(sub, sender, "123456")

	require.NoError(t, f.Start(context.Background()))
	sub.ch <- `{"significantCount": not json`
	sub.ch <- mustJSON(t, testBatch(2))

	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, 5*time.Second, 10*time.Millisecond, "fan-out must survive a malformed payload")
}

func TestFanout_SendFailureIsNotRetried(t *testing.T) {
	sub := newFakeSubscriber()
	sender := &fakeAlertSender{err: errors.New("telegram api error 429: too many requests")}
	f := NewFanout(sub, sender, "123456")

	require.NoError(t, f.Start(context.Background()))
	sub.ch <- mustJSON(t, testBatch(2))

	time.Sleep(100 * time.Millisecond)

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sender.messages(), "a failed delivery must not be retried")
}

func TestFanout_StopIsIdempotent(t *testing.T) {
	sub := newFakeSubscriber()
	f := NewFanout(sub, &fakeAlertSender{}, "123456")

	require.NoError(t, f.Start(context.Background()))

	f.Stop()
	assert.NotPanics(t, f.Stop)
	assert.Equal(t, 1, sub.closeCount())
}

func TestFanout_StopBeforeStart(t *testing.T) {
	f := NewFanout(newFakeSubscriber(), &fakeAlertSender{}, "123456")
	assert.NotPanics(t, f.Stop)
}

func TestFanout_SubscribeFailurePropagates(t *testing.T) {
	sub := newFakeSubscriber()
	sub.subErr = errors.New("dial tcp: connection refused")
	f := NewFanout(sub, &fakeAlertSender{}, "123456")

	assert.Error(t, f.Start(context.Background()))
}

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456", "-100123456"},
		{"-123456", "-100123456"},
		{"-100123456", "-100123456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeChatID(tt.in), "input %q", tt.in)
	}
}
