package rate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Action string

const (
	ActionLike      Action = "likes"
	ActionComplaint Action = "complaints"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Rule caps an action at Limit events per Window. A zero limit disables it.
type Rule struct {
	Limit  int
	Window time.Duration
}

type Limiter struct {
	store WindowStore
	rules map[Action][]Rule
}

func NewLimiter(store WindowStore) *Limiter {
	return &Limiter{
		store: store,
		rules: make(map[Action][]Rule),
	}
}

// Add registers a window for an action. Several windows may guard the same
// action; the longest retry wins.
func (l *Limiter) Add(action Action, limit int, window time.Duration) *Limiter {
	if limit <= 0 || window <= 0 {
		return l
	}
	l.rules[action] = append(l.rules[action], Rule{Limit: limit, Window: window})
	return l
}

// Allow counts one event and reports whether it fits every window.
func (l *Limiter) Allow(ctx context.Context, action Action, profileID string) (int64, bool, error) {
	if strings.TrimSpace(profileID) == "" {
		return 0, false, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, rule := range l.rules[action] {
		count, ttl, err := l.store.IncrementWindow(ctx, windowKey(action, rule.Window, profileID), rule.Window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(rule.Limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfter reports the wait before the next event fits without counting one.
func (l *Limiter) RetryAfter(ctx context.Context, action Action, profileID string) (int64, error) {
	if strings.TrimSpace(profileID) == "" {
		return 0, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, rule := range l.rules[action] {
		count, ttl, err := l.store.WindowState(ctx, windowKey(action, rule.Window, profileID))
		if err != nil {
			return 0, err
		}
		if count >= int64(rule.Limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}
	return retryAfterSec, nil
}

func windowKey(action Action, window time.Duration, profileID string) string {
	return "rate:" + string(action) + ":" + strconv.FormatInt(int64(window/time.Second), 10) + "s:" + profileID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
