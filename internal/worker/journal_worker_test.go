package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

type fakeJournalStore struct {
	entries []model.JournalEntry
}

func (f *fakeJournalStore) Create(_ context.Context, entry *model.JournalEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func TestJournalWorker_PersistDecodesEntry(t *testing.T) {
	store := &fakeJournalStore{}
	w := NewJournalWorker(nil, store, "gem.journal", logger.NewNop())

	body, err := json.Marshal(model.JournalEntry{
		ID:         42,
		Kind:       model.JournalCanvasArchived,
		GemID:      "gem-1",
		CanvasID:   "canvas-1",
		OccurredAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, w.persist(context.Background(), body))
	require.Len(t, store.entries, 1)
	assert.Zero(t, store.entries[0].ID)
	assert.Equal(t, "canvas-1", store.entries[0].CanvasID)
}

func TestJournalWorker_PersistRejectsBadPayload(t *testing.T) {
	store := &fakeJournalStore{}
	w := NewJournalWorker(nil, store, "gem.journal", logger.NewNop())

	assert.Error(t, w.persist(context.Background(), []byte("not json")))
	assert.Error(t, w.persist(context.Background(), []byte(`{"kind":"gem.created"}`)))
	assert.Empty(t, store.entries)
}
