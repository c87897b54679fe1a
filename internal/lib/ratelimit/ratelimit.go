// Package ratelimit ограничивает число запросов с одного IP в пределах процесса.
//
// Общий лимит на окно делится между процессами, обслуживающими трафик,
// поскольку общего счётчика между ними нет.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerProcess возвращает долю общего лимита для одного процесса: max(1, round(globalMax/workers)).
func PerProcess(globalMax, workers int) int {
	if workers < 1 {
		workers = 1
	}
	n := int(math.Round(float64(globalMax) / float64(workers)))
	if n < 1 {
		return 1
	}
	return n
}

type visitor struct {
	lim   *rate.Limiter
	start time.Time
	seen  time.Time
}

// Limiter считает запросы каждого IP в фиксированном окне. Окно IP
// начинается с его первого запроса; внутри окна пропускается не больше
// limit запросов, новое окно начинается с нуля.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

// New создаёт Limiter на limit запросов за window.
func New(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Limit возвращает лимит запросов на окно.
func (l *Limiter) Limit() int { return l.limit }

// Window возвращает длину окна.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow учитывает запрос ip и сообщает, укладывается ли он в лимит текущего окна.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok || now.Sub(v.start) >= l.window {
		// Нулевая скорость: запас не пополняется, его хватает ровно на limit запросов.
		v = &visitor{lim: rate.NewLimiter(0, l.limit), start: now}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

// Cleanup удаляет счётчики, к которым не обращались дольше окна.
// Блокируется до отмены ctx.
func (l *Limiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict()
		}
	}
}

func (l *Limiter) evict() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for ip, v := range l.visitors {
		if now.Sub(v.seen) > l.window {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}
