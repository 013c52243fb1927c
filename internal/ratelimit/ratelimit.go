// Package ratelimit ограничивает частоту запросов по ключу (обычно id пользователя).
package ratelimit

import (
	"context"
	"time"
)

// Decision результат проверки лимита
type Decision struct {
	Allowed bool
	// RetryAfter подсказка для заголовка Retry-After, 0 если подсказки нет
	RetryAfter time.Duration
}

// Limiter решает, можно ли выполнить действие для ключа прямо сейчас
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Unlimited пропускает всё; используется при RATE_LIMIT_RPS=0
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
