package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spigell/jobfit/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []publishCall
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleEvaluation() *interview.Evaluation {
	judgement := interview.FallbackJudgement()
	judgement.Scores[interview.EvidenceDensity] = 20
	judgement.Scores[interview.ContextTranslation] = 5

	return &interview.Evaluation{
		ID:        12,
		RoleID:    3,
		Candidate: interview.Candidate{Name: "Ada", Email: "ada@example.com"},
		Judgement: judgement,
		CreatedAt: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestPublisherSendsEvaluationCreated(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "jobfit.evaluations", zap.NewNop())

	require.NoError(t, p.EvaluationCreated(context.Background(), sampleEvaluation()))
	require.Len(t, ch.published, 1)

	call := ch.published[0]
	assert.Equal(t, "", call.exchange)
	assert.Equal(t, "jobfit.evaluations", call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, EvaluationCreated, call.msg.Type)

	var msg Message
	require.NoError(t, json.Unmarshal(call.msg.Body, &msg))
	assert.Equal(t, EvaluationCreated, msg.Type)
	assert.Equal(t, int64(12), msg.EvaluationID)
	assert.Equal(t, int64(3), msg.RoleID)
	assert.Equal(t, 25, msg.Total)
	assert.Equal(t, 20, msg.Scores["Evidence density"])
	assert.Len(t, msg.Scores, 5)
}

func TestPublisherWrapsErrors(t *testing.T) {
	brokerErr := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: brokerErr}, "q", nil)

	err := p.EvaluationCreated(context.Background(), sampleEvaluation())
	assert.ErrorIs(t, err, brokerErr)
}

func TestPublisherClose(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "q", nil)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewDisabled(t *testing.T) {
	n, closeFn, err := New(Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)
	assert.NoError(t, closeFn())
	assert.NoError(t, n.EvaluationCreated(context.Background(), sampleEvaluation()))
}
