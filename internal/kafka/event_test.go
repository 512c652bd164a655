package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	in := Event{
		ID:         "e-1",
		Type:       EventCheckoutCaptured,
		Email:      "a@b.com",
		OrderID:    "O1",
		Amount:     7999,
		Currency:   "EUR",
		OccurredAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, ok := DecodeEvent(data)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestDecodeEvent_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "missing type", data: `{"id":"e-1"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := DecodeEvent([]byte(tc.data))
			assert.False(t, ok)
		})
	}
}
