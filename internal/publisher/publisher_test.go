package publisher

import (
	"context"
	"testing"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("log", func(t *testing.T) {
		p, err := New(config.Config{Publisher: config.PublisherLog})
		require.NoError(t, err)
		assert.IsType(t, &LogPublisher{}, p)
	})

	t.Run("twitter", func(t *testing.T) {
		p, err := New(config.Config{
			Publisher:           config.PublisherTwitter,
			TwConsumerKey:       "a",
			TwConsumerSecret:    "b",
			TwAccessTokenKey:    "c",
			TwAccessTokenSecret: "d",
			TwitterApiUrl:       "https://api.twitter.com/1.1/",
			TwitterUploadUrl:    "https://upload.twitter.com/1.1/",
		})
		require.NoError(t, err)
		assert.IsType(t, &TwitterPublisher{}, p)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(config.Config{Publisher: "carrier-pigeon"})
		assert.Error(t, err)
	})
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	original := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(original)

	p := NewLogPublisher()
	require.NoError(t, p.Publish(context.Background(), models.Announcement{Text: "sold", Image: []byte("abc")}))
	require.NoError(t, p.Close())

	entries := logs.FilterMessage("Announcement").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sold", entries[0].ContextMap()["text"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["imageBytes"])
}
