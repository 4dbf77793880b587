package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// RemindersExchange — exchange для сообщений о скором окончании подписок.
const RemindersExchange = "reminders"

// ExpiringQueueName — очередь напоминаний об истекающих подписках.
const ExpiringQueueName = "reminders.expiring"

// ExpiringRoutingKey — ключ маршрутизации напоминаний.
const ExpiringRoutingKey = "expiring"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetReminderQueues возвращает очереди напоминаний.
func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ExpiringQueueName, RoutingKey: ExpiringRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		RemindersExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			RemindersExchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
