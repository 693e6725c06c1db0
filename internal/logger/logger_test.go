package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask("  "))
	assert.Equal(t, "****", Mask("short"))
	assert.Equal(t, "****cdef", Mask("0123456789abcdef"))
}

func TestSet_RoutesToObserver(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Debug("hidden")
	Warn("signature mismatch", "token", Mask("tok_0123456789"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "signature mismatch", entries[0].Message)
		assert.Equal(t, "****6789", entries[0].ContextMap()["token"])
	}
}
