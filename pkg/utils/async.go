package utils

import (
	"time"

	"go.uber.org/zap"
)

// EnsureRunGoroutine runs f on a goroutine and restarts it if it panics.
// After too many restarts the logger's Fatal takes the process down, since a
// tight panic loop means something structural is broken.
func EnsureRunGoroutine(logger *zap.Logger, f func()) {
	go func() {
		for restarts := 0; ; restarts++ {
			if done := runOnce(logger, f, restarts); done {
				return
			}
			time.Sleep(time.Second)
		}
	}()
}

func runOnce(logger *zap.Logger, f func(), restarts int) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			if restarts >= 10 {
				logger.Fatal("goroutine paniced too many times", zap.Any("panic", r))
			}
			logger.Error("goroutine paniced, restarting",
				zap.Any("panic", r), zap.Int("restarts", restarts))
			done = false
		}
	}()
	f()
	return true
}
