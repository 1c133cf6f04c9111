package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"git.handmade.network/hmn/pngscope/src/oops"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPrettyWriter(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewPrettyZerologWriter(&out)).Level(zerolog.DebugLevel)

	t.Run("single line", func(t *testing.T) {
		out.Reset()
		logger.Info().Msg("decoded image")
		assert.Contains(t, out.String(), "INFO")
		assert.Contains(t, out.String(), "decoded image")
		assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	})
	t.Run("fields are sorted", func(t *testing.T) {
		out.Reset()
		logger.Info().Str("path", "a.png").Int("height", 2).Msg("stored")
		s := out.String()
		assert.Less(t, strings.Index(s, "height"), strings.Index(s, "path"))
	})
	t.Run("errors with stacks", func(t *testing.T) {
		out.Reset()
		zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
		logger.Error().Stack().Err(oops.New(errors.New("boom"), "failed to insert")).Msg("store failed")
		s := out.String()
		assert.Contains(t, s, "ERROR:")
		assert.Contains(t, s, "failed to insert: boom")
		assert.Contains(t, s, "Stack trace:")
	})
	t.Run("non-json passes through", func(t *testing.T) {
		out.Reset()
		w := NewPrettyZerologWriter(&out)
		_, err := w.Write([]byte("plain text\n"))
		assert.Nil(t, err)
		assert.Equal(t, "plain text\n", out.String())
	})
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, GlobalLogger(), ExtractLogger(context.Background()))

	logger := With().Str("file", "a.png").Logger()
	ctx := AttachLoggerToContext(&logger, context.Background())
	assert.Same(t, &logger, ExtractLogger(ctx))
}
