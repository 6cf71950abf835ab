package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"groupchat/config"
)

// 事件类型
const (
	EventGroupCreated  = "group.created"
	EventGroupDeleted  = "group.deleted"
	EventMemberAdded   = "member.added"
	EventMemberRemoved = "member.removed"
	EventMessagePosted = "message.posted"
	EventUserDeleted   = "user.deleted"
)

// Event 生命周期事件，发布到Kafka供下游（审计、统计）消费
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actor_id"`
	GroupID   uint      `json:"group_id,omitempty"`
	UserID    uint      `json:"user_id,omitempty"`
	MessageID uint      `json:"message_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventService Kafka事件发布服务
type EventService struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *EventMetrics
}

// EventMetrics 收集事件发布指标
type EventMetrics struct {
	published int64
	errors    int64
	mu        sync.RWMutex
}

// NewEventService 创建Kafka事件服务
func NewEventService() (*EventService, error) {
	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Retry.Max = 5
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Compression = sarama.CompressionSnappy
	producerConfig.Version = sarama.V2_5_0_0

	producer, err := sarama.NewSyncProducer(config.AppConfig.KafkaBootstrapServers, producerConfig)
	if err != nil {
		return nil, fmt.Errorf("创建Kafka生产者失败: %v", err)
	}

	return &EventService{
		producer: producer,
		topic:    config.AppConfig.KafkaEventTopic,
		metrics:  &EventMetrics{},
	}, nil
}

// Publish 发布事件，发布失败只记录日志不影响请求结果
func (s *EventService) Publish(event *Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("序列化事件失败: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.metrics.mu.Lock()
		s.metrics.errors++
		s.metrics.mu.Unlock()
		log.Printf("发布事件失败 [%s]: %v", event.Type, err)
		return
	}

	s.metrics.mu.Lock()
	s.metrics.published++
	s.metrics.mu.Unlock()
}

// GetMetrics 获取事件发布指标
func (s *EventService) GetMetrics() map[string]int64 {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()
	return map[string]int64{
		"published": s.metrics.published,
		"errors":    s.metrics.errors,
	}
}

// Close 关闭生产者连接
func (s *EventService) Close() error {
	return s.producer.Close()
}
