package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, parseLevel("debug"))
	assert.Equal(t, log.WarnLevel, parseLevel("warning"))
	assert.Equal(t, log.ErrorLevel, parseLevel("error"))
	assert.Equal(t, log.InfoLevel, parseLevel("nonsense"))
}

func TestComponentLoggersCarryFields(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug")
	t.Cleanup(func() { Logger = nil })

	Repository("event").Info("created")

	out := buf.String()
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "repository=event")
}
