package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	t.Run("drops null fields", func(t *testing.T) {
		var missing *time.Time
		var nilMap map[string]any

		actual := Sanitize(model.Record{
			"name":    "Steel Rod",
			"note":    nil,
			"due":     missing,
			"details": nilMap,
		})

		require.Equal(t, model.Record{"name": "Steel Rod"}, actual)
	})

	t.Run("formats dates as utc strings", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		at := time.Date(2026, 3, 1, 12, 30, 0, 0, loc)

		actual := Sanitize(model.Record{"createdAt": at, "updatedAt": &at})

		require.Equal(t, "2026-03-01T09:30:00Z", actual["createdAt"])
		require.Equal(t, "2026-03-01T09:30:00Z", actual["updatedAt"])
	})

	t.Run("recurses into nested objects", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		actual := Sanitize(model.Record{
			"contact": map[string]any{
				"email": "ops@example.com",
				"phone": nil,
				"since": at,
			},
		})

		require.Equal(t, map[string]any{
			"email": "ops@example.com",
			"since": "2026-01-02T03:04:05Z",
		}, actual["contact"])
	})

	t.Run("passes arrays through untouched", func(t *testing.T) {
		quotes := []any{map[string]any{"price": "10", "note": nil}}

		actual := Sanitize(model.Record{"quotes": quotes})

		require.Equal(t, quotes, actual["quotes"])
	})

	t.Run("does not mutate input", func(t *testing.T) {
		input := model.Record{"name": "A", "empty": nil}

		_ = Sanitize(input)

		require.Len(t, input, 2)
	})

	t.Run("nil input yields empty record", func(t *testing.T) {
		actual := Sanitize(nil)
		require.NotNil(t, actual)
		require.Empty(t, actual)
	})
}
