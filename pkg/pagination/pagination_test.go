package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 40, NormalizeLimit(40))
	assert.Equal(t, MaxLimit, NormalizeLimit(5000))
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 4, 2, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(original))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, original.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, original.ID, parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorInvalid(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)
}

type pageRow struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func TestCutPage(t *testing.T) {
	now := time.Now().UTC()
	rows := make([]pageRow, 4)
	for i := range rows {
		rows[i] = pageRow{CreatedAt: now.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}

	cursorOf := func(r pageRow) Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

	t.Run("buffered page yields next cursor", func(t *testing.T) {
		page := CutPage(rows, 3, cursorOf)
		require.Len(t, page.Items, 3)
		require.NotEmpty(t, page.NextCursor)

		parsed, err := ParseCursor(page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, rows[2].ID, parsed.ID)
	})

	t.Run("short page has no next cursor", func(t *testing.T) {
		page := CutPage(rows[:2], 3, cursorOf)
		assert.Len(t, page.Items, 2)
		assert.Empty(t, page.NextCursor)
	})
}
