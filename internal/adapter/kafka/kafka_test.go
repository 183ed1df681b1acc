package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 8, 12, 15, 10, 0, 0, time.UTC)
	alert := Alert{
		ID:       "alert-1",
		PostID:   "post-1",
		Title:    "SOS - Emergency Assistance Needed",
		Location: "Rizal St, Montalban, Rizal",
		Details:  "trapped on roof",
		IssuedAt: now,
	}

	msg, err := serializeToMessage(alert, "sos")
	require.NoError(t, err)

	assert.Equal(t, []byte("post-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"postId":"post-1"`)
	assert.Contains(t, string(msg.Value), `"location":"Rizal St, Montalban, Rizal"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "alert_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("sos"), msg.Headers[0].Value)
	assert.Equal(t, "issued_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeFloodReportAlert(t *testing.T) {
	now := time.Date(2024, 8, 12, 15, 10, 0, 0, time.UTC)
	alert := Alert{
		ID:       "alert-2",
		PostID:   "report-1",
		Title:    "Knee-deep flood report",
		Location: "14.77390, 121.13900",
		Level:    "Knee-deep",
		IssuedAt: now,
	}

	msg, err := serializeToMessage(alert, "flood_report")
	require.NoError(t, err)

	assert.Equal(t, []byte("report-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"level":"Knee-deep"`)
	assert.Contains(t, string(msg.Value), `"location":"14.77390, 121.13900"`)
	assert.Equal(t, []byte("flood_report"), msg.Headers[0].Value)
}
