package startup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		MaxAttempts:  attempts,
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dns", &net.DNSError{Err: "no such host", Name: "nas"}, true},
		{"op error", fmt.Errorf("wrapped: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}), true},
		{"refused string", errors.New("dial tcp 10.0.0.2:445: connection refused"), true},
		{"auth", errors.New("STATUS_LOGON_FAILURE"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetry_SucceedsAfterNetworkErrors(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0

	err := WithRetry(context.Background(), "connect", fastRetry(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, &logger)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnNonNetworkError(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0
	authErr := errors.New("access denied")

	err := WithRetry(context.Background(), "connect", fastRetry(5), func(ctx context.Context) error {
		calls++
		return authErr
	}, &logger)

	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0

	err := WithRetry(context.Background(), "connect", fastRetry(3), func(ctx context.Context) error {
		calls++
		return errors.New("i/o timeout")
	}, &logger)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Equal(t, 3, calls)
}
