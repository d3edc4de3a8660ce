package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
)

func msg(id, ts, content string) models.Message {
	return models.Message{ID: id, Timestamp: ts, Content: content}
}

func TestMergeByID(t *testing.T) {
	t.Run("appends unseen entries in incoming order", func(t *testing.T) {
		existing := []models.Message{msg("a", "1", "one")}
		incoming := []models.Message{msg("b", "2", "two"), msg("c", "3", "three")}

		merged := MergeByID(existing, incoming)

		assert.Len(t, merged, 3)
		assert.Equal(t, "a", merged[0].ID)
		assert.Equal(t, "b", merged[1].ID)
		assert.Equal(t, "c", merged[2].ID)
	})

	t.Run("incoming copy wins on id collision", func(t *testing.T) {
		existing := []models.Message{msg("a", "1", "local"), msg("b", "2", "two")}
		incoming := []models.Message{msg("a", "1", "remote")}

		merged := MergeByID(existing, incoming)

		assert.Len(t, merged, 2)
		assert.Equal(t, "remote", merged[0].Content)
		// Collision does not move the entry.
		assert.Equal(t, "a", merged[0].ID)
	})

	t.Run("merging the same batch twice is a no-op", func(t *testing.T) {
		existing := []models.Message{msg("a", "1", "one")}
		incoming := []models.Message{msg("b", "2", "two"), msg("a", "1", "one")}

		once := MergeByID(existing, incoming)
		twice := MergeByID(once, incoming)

		assert.Equal(t, once, twice)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, MergeByID[models.Message](nil, nil))

		incoming := []models.Message{msg("a", "1", "one")}
		merged := MergeByID(nil, incoming)
		assert.Len(t, merged, 1)
	})
}

func TestSortBy(t *testing.T) {
	t.Run("orders by timestamp", func(t *testing.T) {
		msgs := []models.Message{msg("c", "3", ""), msg("a", "1", ""), msg("b", "2", "")}

		SortBy(msgs, func(a, b models.Message) bool { return a.Timestamp < b.Timestamp })

		assert.Equal(t, "a", msgs[0].ID)
		assert.Equal(t, "b", msgs[1].ID)
		assert.Equal(t, "c", msgs[2].ID)
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		msgs := []models.Message{msg("first", "1", ""), msg("second", "1", "")}

		SortBy(msgs, func(a, b models.Message) bool { return a.Timestamp < b.Timestamp })

		assert.Equal(t, "first", msgs[0].ID)
		assert.Equal(t, "second", msgs[1].ID)
	})
}
