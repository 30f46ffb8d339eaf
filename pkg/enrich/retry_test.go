package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type tempNetErr struct{}

func (tempNetErr) Error() string   { return "temp net err" }
func (tempNetErr) Timeout() bool   { return false }
func (tempNetErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want bool
	}{
		{name: "nil", in: nil, want: false},
		{name: "plain", in: errors.New("bad request"), want: false},
		{name: "transient", in: &TransientError{Err: errors.New("429")}, want: true},
		{name: "wrapped_transient", in: fmt.Errorf("gen: %w", &TransientError{}), want: true},
		{name: "deadline", in: context.DeadlineExceeded, want: true},
		{name: "canceled", in: context.Canceled, want: false},
		{name: "net_temporary", in: tempNetErr{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.in))
		})
	}
}

func TestBackoffSleep(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffSleep(100*time.Millisecond, time.Second, 0, 0))
	assert.Equal(t, 200*time.Millisecond, backoffSleep(100*time.Millisecond, time.Second, 0, 1))
	assert.Equal(t, time.Second, backoffSleep(100*time.Millisecond, time.Second, 0, 10))

	got := backoffSleep(100*time.Millisecond, time.Second, 0.2, 0)
	assert.GreaterOrEqual(t, got, 80*time.Millisecond)
	assert.LessOrEqual(t, got, 120*time.Millisecond)
}

func TestTransientError_Message(t *testing.T) {
	assert.Equal(t, "transient error", (&TransientError{}).Error())
	assert.Equal(t, "boom", (&TransientError{Err: errors.New("boom")}).Error())
}
