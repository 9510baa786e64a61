package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"
)

const (
	ScoreExchange    = "quiz.scores"
	ScoreRecordedKey = "score.recorded"

	publishTimeout = 2 * time.Second
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ScoreEvent is the body of a score.recorded message.
type ScoreEvent struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ScorePublisher emits one message per completed attempt on a topic exchange.
type ScorePublisher struct {
	conn *amqp.Connection
	ch   channel
	log  logrus.FieldLogger
}

// Dial connects to the broker and declares the score exchange.
func Dial(url string, log logrus.FieldLogger) (*ScorePublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	p, err := newScorePublisher(ch, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newScorePublisher(ch channel, log logrus.FieldLogger) (*ScorePublisher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := ch.ExchangeDeclare(ScoreExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", ScoreExchange, err)
	}
	return &ScorePublisher{ch: ch, log: log}, nil
}

func (p *ScorePublisher) Publish(ctx context.Context, rec domain.ScoreRecord) error {
	body, err := json.Marshal(ScoreEvent{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Score:      rec.Score,
		Total:      rec.Total,
		Percentage: domain.Percentage(rec.Score, rec.Total),
		RecordedAt: rec.RecordedAt,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.ch.PublishWithContext(ctx, ScoreExchange, ScoreRecordedKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    strconv.FormatInt(rec.ID, 10),
		Timestamp:    rec.RecordedAt,
		Body:         body,
	})
}

// RecordHook publishes from the engine's completion hook. Failures are
// logged only; the score is already stored.
func (p *ScorePublisher) RecordHook() app.RecordHook {
	return func(ctx context.Context, rec domain.ScoreRecord) {
		if err := p.Publish(ctx, rec); err != nil {
			p.log.WithError(err).WithField("record", rec.ID).Warn("score event not published")
		}
	}
}

func (p *ScorePublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
