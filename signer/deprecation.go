package signer

import (
	"sync"
	"time"

	"cosmossdk.io/log"
)

// DefaultDeprecationInterval is the minimum time between two warnings for
// the same deprecated method.
const DefaultDeprecationInterval = 60 * time.Second

// DeprecationLogger provides rate-limited deprecation warnings.
//
// RATIONALE: bots call the legacy batch methods in tight loops. Logging every
// call would flood the logs; one line per method per interval keeps the
// usage visible.
//
// THREAD-SAFETY: All methods are safe for concurrent use.
type DeprecationLogger struct {
	mu sync.Mutex

	// lastWarningTime tracks when we last logged a warning for each method
	lastWarningTime map[string]time.Time

	// warningInterval is the minimum time between warnings for the same method
	warningInterval time.Duration

	// enabled controls whether warnings are logged
	enabled bool

	logger log.Logger
	now    func() time.Time
}

// NewDeprecationLogger creates an enabled logger with the default interval.
func NewDeprecationLogger(logger log.Logger) *DeprecationLogger {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &DeprecationLogger{
		lastWarningTime: make(map[string]time.Time),
		warningInterval: DefaultDeprecationInterval,
		enabled:         true,
		logger:          logger,
		now:             time.Now,
	}
}

// Warn logs that method is deprecated in favour of replacement, at most once
// per interval per method. It reports whether a line was written.
func (dl *DeprecationLogger) Warn(method, replacement string) bool {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if !dl.enabled {
		return false
	}

	now := dl.now()
	if lastTime, exists := dl.lastWarningTime[method]; exists {
		if now.Sub(lastTime) < dl.warningInterval {
			return false
		}
	}
	dl.lastWarningTime[method] = now

	dl.logger.Info("DEPRECATION WARNING: method is deprecated",
		"method", method,
		"replacement", replacement,
	)
	return true
}

// SetEnabled enables or disables deprecation warnings.
func (dl *DeprecationLogger) SetEnabled(enabled bool) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.enabled = enabled
}

// SetInterval sets the minimum time between warnings for the same method.
// Use 0 to log every call.
func (dl *DeprecationLogger) SetInterval(interval time.Duration) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.warningInterval = interval
}

// SetLogger replaces the underlying logger. nil discards output.
func (dl *DeprecationLogger) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger = logger
}

// Reset forgets all rate-limit state.
func (dl *DeprecationLogger) Reset() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.lastWarningTime = make(map[string]time.Time)
}
