package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		ts, err := ParseTimestamp("2025-01-01T10:00:00+03:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC), ts)
	})

	t.Run("LocalLayout", func(t *testing.T) {
		ts, err := ParseTimestamp("2025-01-01T10:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), ts)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseTimestamp("tomorrow")
		assert.Error(t, err)
	})
}

func TestBookingInput_UnmarshalJSON(t *testing.T) {
	var in BookingInput
	err := json.Unmarshal([]byte(`{"itemId": 3, "start": "2030-05-01T12:00:00", "end": "2030-05-02T12:00:00Z"}`), &in)
	require.NoError(t, err)

	assert.Equal(t, int64(3), in.ItemID)
	require.NotNil(t, in.Start)
	require.NotNil(t, in.End)
	assert.Equal(t, 24*time.Hour, in.End.Sub(*in.Start))

	var missing BookingInput
	require.NoError(t, json.Unmarshal([]byte(`{"itemId": 3}`), &missing))
	assert.Nil(t, missing.Start)
	assert.Nil(t, missing.End)

	var bad BookingInput
	assert.Error(t, json.Unmarshal([]byte(`{"itemId": 3, "start": "soon"}`), &bad))
}

func TestPatches(t *testing.T) {
	name := "Drill"
	available := false
	item := &Item{Name: "Saw", Description: "Hand saw", Available: true}
	ItemPatch{Name: &name, Available: &available}.Apply(item)
	assert.Equal(t, "Drill", item.Name)
	assert.Equal(t, "Hand saw", item.Description)
	assert.False(t, item.Available)

	email := "new@example.com"
	user := &User{Name: "Ann", Email: "ann@example.com"}
	UserPatch{Email: &email}.Apply(user)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
}
