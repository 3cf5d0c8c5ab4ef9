package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestWithAddsFieldsToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Environment: "test", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Environment: "test"}) })

	ctx := With(context.Background(), "request_id", "req-1")
	ctx = With(ctx, "user_id", "u-1")
	FromContext(ctx).Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"u-1"`)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Equal(t, &log.Logger, FromContext(context.Background()))
}
