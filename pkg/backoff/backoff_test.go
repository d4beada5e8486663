package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponential_Delay(t *testing.T) {
	e, err := NewExponential(2.0)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, e.Delay(1))
	assert.Equal(t, 4*time.Second, e.Delay(2))
	assert.Equal(t, 8*time.Second, e.Delay(3))
}

func TestExponential_StrictlyIncreasing(t *testing.T) {
	e, err := NewExponential(1.5)
	require.NoError(t, err)

	prev := time.Duration(0)
	for attempts := 1; attempts <= 10; attempts++ {
		d := e.Delay(attempts)
		assert.Greater(t, d, prev, "delay must grow with attempts")
		prev = d
	}
}

func TestExponential_ClampsLowAttempts(t *testing.T) {
	e, err := NewExponential(2.0)
	require.NoError(t, err)

	assert.Equal(t, e.Delay(1), e.Delay(0))
	assert.Equal(t, e.Delay(1), e.Delay(-3))
}

func TestExponential_CapsHugeAttemptCounts(t *testing.T) {
	e, err := NewExponential(2.0)
	require.NoError(t, err)

	// 2^100 seconds overflows time.Duration; the cap keeps the delay
	// positive and bounded.
	assert.Equal(t, MaxDelay, e.Delay(100))
	assert.Equal(t, MaxDelay, e.Delay(5000))
	assert.Positive(t, e.Delay(5000))
}

func TestNewExponential_RejectsNonPositiveBase(t *testing.T) {
	_, err := NewExponential(0)
	assert.Error(t, err)

	_, err = NewExponential(-2)
	assert.Error(t, err)
}
