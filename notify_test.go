package voxd_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxd"
)

func TestEncodeNotification(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 23, 12, 30, 0, 500_000_000, time.UTC)

	t.Run("session_ready", func(t *testing.T) {
		t.Parallel()
		raw, err := voxd.EncodeNotification("session_ab12cd34", ts, voxd.SessionReady{})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "session_ready", doc["type"])
		assert.Equal(t, "session_ab12cd34", doc["session_id"])
		assert.InDelta(t, float64(ts.UnixMilli())/1000, doc["timestamp"], 1e-9, "timestamp is unix seconds with sub-second precision")
		assert.Len(t, doc, 3, "no payload fields beyond the envelope")
	})

	t.Run("session_warning carries remaining seconds", func(t *testing.T) {
		t.Parallel()
		raw, err := voxd.EncodeNotification("s", ts, voxd.SessionWarning{RemainingSeconds: 5})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "session_warning", doc["type"])
		assert.Equal(t, float64(5), doc["remaining_seconds"])
	})

	t.Run("session_timeout carries reason and idle duration", func(t *testing.T) {
		t.Parallel()
		raw, err := voxd.EncodeNotification("s", ts, voxd.SessionTimeout{
			Reason:       "inactivity",
			IdleDuration: 61500 * time.Millisecond,
		})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "session_timeout", doc["type"])
		assert.Equal(t, "inactivity", doc["reason"])
		assert.InDelta(t, 61.5, doc["idle_duration"], 1e-9)
	})
}
