package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaValidates(t *testing.T) {
	_, err := NewKafka(KafkaConfig{Topic: TopicProfileUpdated})
	assert.Error(t, err)

	_, err = NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	k, err := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: TopicProfileUpdated, RequiredAcks: "all"})
	require.NoError(t, err)
	assert.Equal(t, kafka.RequireAll, k.w.RequiredAcks)
	assert.NoError(t, k.Close())
}

func TestRequiredAcks(t *testing.T) {
	assert.Equal(t, kafka.RequireNone, requiredAcks("none"))
	assert.Equal(t, kafka.RequireAll, requiredAcks(" ALL "))
	assert.Equal(t, kafka.RequireOne, requiredAcks(""))
}

func TestEncode(t *testing.T) {
	raw, err := encode([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(raw))

	b, err := encode(ProfileUpdated{
		UserID:         7,
		ProfileID:      3,
		WorkExperience: "fresher",
		Skills:         []string{"Go"},
		OccurredAt:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, float64(7), got["user_id"])
	assert.NotContains(t, got, "gender")
	assert.Equal(t, []any{"Go"}, got["skills"])
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "1", ProfileUpdated{}))
	assert.NoError(t, p.Close())
}
