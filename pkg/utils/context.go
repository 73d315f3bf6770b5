package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepResult represents the outcome of a context-aware sleep operation.
type SleepResult int

const (
	// SleepCompleted indicates the sleep duration completed normally.
	SleepCompleted SleepResult = iota
	// SleepCancelled indicates the context was cancelled during sleep.
	SleepCancelled
)

// ContextSleep sleeps for the specified duration while respecting context cancellation.
func ContextSleep(ctx context.Context, duration time.Duration) SleepResult {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return SleepCompleted
	case <-ctx.Done():
		return SleepCancelled
	}
}

// ContextSleepWithLog is ContextSleep that logs cancelMessage when the context ends first.
func ContextSleepWithLog(ctx context.Context, duration time.Duration, logger *zap.Logger, cancelMessage string) SleepResult {
	result := ContextSleep(ctx, duration)
	if result == SleepCancelled && logger != nil && cancelMessage != "" {
		logger.Info(cancelMessage)
	}
	return result
}

// ContextGuard reports whether ctx is already done.
func ContextGuard(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IntervalSleep pauses between iterations of a polling loop.
// Returns true if the loop should continue, false if ctx was cancelled.
func IntervalSleep(ctx context.Context, duration time.Duration, logger *zap.Logger, loopName string) bool {
	result := ContextSleepWithLog(ctx, duration, logger,
		"Context cancelled during pause, stopping "+loopName)
	return result == SleepCompleted
}
