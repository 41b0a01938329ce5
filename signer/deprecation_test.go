package signer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeprecationLogger_LogsWarning(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)

	assert.True(t, dl.Warn("SignOrder", "SignGroup"))

	entries := logger.all()
	if assert.Len(t, entries, 1) {
		assert.Contains(t, entries[0].msg, "DEPRECATION WARNING")
		assert.Equal(t, []any{"method", "SignOrder", "replacement", "SignGroup"}, entries[0].keyVals)
	}
}

func TestDeprecationLogger_RateLimited(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)
	now := time.Unix(1_700_000_000, 0)
	dl.now = func() time.Time { return now }

	assert.True(t, dl.Warn("SignOrder", "SignGroup"))
	assert.False(t, dl.Warn("SignOrder", "SignGroup"))

	// Different methods are limited independently.
	assert.True(t, dl.Warn("SignOrdersBatch", "SignAll"))

	now = now.Add(DefaultDeprecationInterval - time.Second)
	assert.False(t, dl.Warn("SignOrder", "SignGroup"))

	now = now.Add(time.Second)
	assert.True(t, dl.Warn("SignOrder", "SignGroup"))

	assert.Equal(t, 3, logger.count("DEPRECATION WARNING"))
}

func TestDeprecationLogger_ZeroIntervalLogsEveryCall(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)
	dl.SetInterval(0)

	for i := 0; i < 5; i++ {
		dl.Warn("SignOrder", "SignGroup")
	}
	assert.Equal(t, 5, logger.count("DEPRECATION WARNING"))
}

func TestDeprecationLogger_Disabled(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)
	dl.SetEnabled(false)

	assert.False(t, dl.Warn("SignOrder", "SignGroup"))
	assert.Equal(t, 0, logger.count("DEPRECATION WARNING"))
}

func TestDeprecationLogger_SetLogger(t *testing.T) {
	first := newCaptureLogger()
	second := newCaptureLogger()
	dl := NewDeprecationLogger(first)
	dl.SetInterval(0)

	dl.Warn("SignOrder", "SignGroup")
	dl.SetLogger(second)
	dl.Warn("SignOrder", "SignGroup")
	dl.SetLogger(nil)
	dl.Warn("SignOrder", "SignGroup")

	assert.Equal(t, 1, first.count("DEPRECATION WARNING"))
	assert.Equal(t, 1, second.count("DEPRECATION WARNING"))
}

func TestDeprecationLogger_Reset(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)

	dl.Warn("SignOrder", "SignGroup")
	dl.Reset()
	assert.True(t, dl.Warn("SignOrder", "SignGroup"))
}

func TestDeprecationLogger_Concurrent(t *testing.T) {
	logger := newCaptureLogger()
	dl := NewDeprecationLogger(logger)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dl.Warn("SignOrder", "SignGroup")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, logger.count("DEPRECATION WARNING"))
}

func TestDeprecationLogger_NilLoggerIsNop(t *testing.T) {
	dl := NewDeprecationLogger(nil)
	assert.True(t, dl.Warn("SignOrder", "SignGroup"))
}
