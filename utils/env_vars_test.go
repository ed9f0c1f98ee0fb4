package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("MINEALERT_TEST_INT", "42")
	t.Setenv("MINEALERT_TEST_BOOL", "true")
	t.Setenv("MINEALERT_TEST_FLOAT", "0.5")
	t.Setenv("MINEALERT_TEST_DURATION", "90s")
	t.Setenv("MINEALERT_TEST_STRING", "hello")

	assert.Equal(t, 42, GetEnv("MINEALERT_TEST_INT", 1))
	assert.True(t, GetEnv("MINEALERT_TEST_BOOL", false))
	assert.InDelta(t, 0.5, GetEnv("MINEALERT_TEST_FLOAT", 0.0), 1e-9)
	assert.Equal(t, 90*time.Second, GetEnv("MINEALERT_TEST_DURATION", time.Second))
	assert.Equal(t, "hello", GetEnv("MINEALERT_TEST_STRING", ""))
	assert.Equal(t, "fallback", GetEnv("MINEALERT_TEST_MISSING", "fallback"))
}

func TestGetEnv_invalid_panics(t *testing.T) {
	t.Setenv("MINEALERT_TEST_INT", "not-a-number")
	assert.Panics(t, func() { GetEnv("MINEALERT_TEST_INT", 1) })
}
