package oops

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var SampleErrorValue = errors.New("some error occurred that you should handle")

type SampleErrorType struct {
	Message string
}

func (s SampleErrorType) Error() string {
	return s.Message
}

func init() {
	zerolog.ErrorStackMarshaler = ZerologStackMarshaler
}

func TestNew(t *testing.T) {
	t.Run("errors.Is", func(t *testing.T) {
		err := New(SampleErrorValue, "test error")
		if !errors.Is(err, SampleErrorValue) {
			t.Fatal("error did not appear to wrap the sample value")
		}
	})
	t.Run("errors.As", func(t *testing.T) {
		err := New(SampleErrorType{Message: "some fancy error type has occurred"}, "test error")
		var sErr SampleErrorType
		if !errors.As(err, &sErr) {
			t.Fatal("error did not appear to wrap the sample error type")
		}
	})
	t.Run("message formatting", func(t *testing.T) {
		assert.Equal(t, "failed to store /tmp/a.png: some error occurred that you should handle",
			New(SampleErrorValue, "failed to store %s", "/tmp/a.png").Error())
		assert.Equal(t, "nothing wrapped", New(nil, "nothing wrapped").Error())
	})
	t.Run("stack is captured", func(t *testing.T) {
		err := New(nil, "with a stack")
		stack, ok := ZerologStackMarshaler(err).(CallStack)
		if assert.True(t, ok) && assert.NotEmpty(t, stack) {
			assert.Contains(t, stack[0].Function, "TestNew")
		}
		assert.Nil(t, ZerologStackMarshaler(SampleErrorValue))
	})
}
