package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	core, recorded := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	L().Warn("tool failed", zap.String("tool", "search"))
	assert.Equal(t, 1, recorded.Len())
	assert.Equal(t, "search", recorded.All()[0].ContextMap()["tool"])

	SetLogger(nil)
	L().Warn("dropped")
	assert.Equal(t, 1, recorded.Len())
}
