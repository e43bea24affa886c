package safe

import (
	"github.com/GitSid-glitch/cobuild/logger"
)

// Go starts a goroutine that recovers from panic,
// so a misbehaving handler cannot crash the whole process.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}

// Call invokes f inline with panic recovery. Used around per-event
// handlers: one event's failure degrades to a no-op for that event.
func Call(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[safe.Call] panic recovered: %v", r)
		}
	}()
	return f()
}
