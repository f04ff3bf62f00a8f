package service

import (
	"encoding/json"
	"quizgen_backend/internal/util"
	"quizgen_backend/pkg/logger"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	EventQuizGenerated  = "quiz.generated"
	EventQuizDeleted    = "quiz.deleted"
	EventResultRecorded = "result.recorded"
)

type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
	Close()
}

type eventEnvelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// AMQPEventPublisher 发布到 topic 交换机，事件类型作为路由键
type AMQPEventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPEventPublisher(amqpURL, exchange string) (*AMQPEventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPEventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPEventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := json.Marshal(eventEnvelope{Type: eventType, OccurredAt: time.Now(), Payload: payload})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  util.MimeJSON,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *AMQPEventPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopEventPublisher 未启用消息队列时只记录调试日志
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(eventType string, payload interface{}) error {
	logger.Log.Debug("Event dropped, publisher disabled", zap.String("type", eventType))
	return nil
}

func (NopEventPublisher) Close() {}

// publishEvent 事件发布失败不影响主流程
func publishEvent(p EventPublisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(eventType, payload); err != nil {
		logger.Log.Warn("Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
