package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithScopeKeepsLevel(t *testing.T) {
	l := NewLogger(LogLevelDebug)
	scoped := l.WithScope("extractor")
	assert.Equal(t, LogLevelDebug, scoped.level)
	assert.Equal(t, "extractor", scoped.scope)
}

func TestNewDefaultLoggerReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "trace")
	assert.Equal(t, LogLevelTrace, NewDefaultLogger().level)

	t.Setenv("LOG_LEVEL", "bogus")
	assert.Equal(t, LogLevelInfo, NewDefaultLogger().level)
}
