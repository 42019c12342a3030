package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcanvas/internal/model"
)

func TestStudio_CreateGemValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.studio.CreateGem(ctx, model.Persona{Name: "A", StudentName: " ", SystemInstruction: "C"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.studio.CreateGem(ctx, model.Persona{Name: "A", StudentName: "B", SystemInstruction: "C", KnowledgeBaseGroupID: "group-missing"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.gems.List())
}

func TestStudio_UpdateGem(t *testing.T) {
	f := newFixture(t)
	gem := f.createGem(t)

	blank := ""
	_, err := f.studio.UpdateGem(context.Background(), gem.ID, model.PersonaPatch{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	name := "New name"
	_, err = f.studio.UpdateGem(context.Background(), "gem-missing", model.PersonaPatch{Name: &name})
	assert.ErrorIs(t, err, ErrGemNotFound)

	updated, err := f.studio.UpdateGem(context.Background(), gem.ID, model.PersonaPatch{Name: &name, KnowledgeBaseGroupID: &blank})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, "", updated.KnowledgeBaseGroupID)
}

func TestStudio_DeleteGemClosesSession(t *testing.T) {
	f := newFixture(t)
	gem := f.createGem(t)
	_, err := f.studio.Launch(gem.ID)
	require.NoError(t, err)

	err = f.studio.DeleteGem(context.Background(), gem.ID, NeverConfirm)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	_, err = f.studio.Session(gem.ID)
	require.NoError(t, err)

	require.NoError(t, f.studio.DeleteGem(context.Background(), gem.ID, AlwaysConfirm))
	_, err = f.studio.Session(gem.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = f.studio.DeleteGem(context.Background(), gem.ID, AlwaysConfirm)
	assert.ErrorIs(t, err, ErrGemNotFound)
}

func TestStudio_PublishesJournalEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gem := startSessionWithHello(t, f)

	pending, err := f.studio.EndSession(ctx, gem.ID)
	require.NoError(t, err)
	_, err = f.studio.AcceptCanvas(ctx, gem.ID, pending.Canvas.ID)
	require.NoError(t, err)

	sess, err := f.studio.Launch(gem.ID)
	require.NoError(t, err)
	_, err = sess.SendMessage(ctx, "again")
	require.NoError(t, err)
	_, err = f.studio.EndSession(ctx, gem.ID)
	require.NoError(t, err)
	_, err = f.studio.DiscardCanvas(ctx)
	require.NoError(t, err)

	require.NoError(t, f.studio.DeleteGem(ctx, gem.ID, AlwaysConfirm))

	assert.Equal(t, []string{
		model.JournalGemCreated,
		model.JournalCanvasArchived,
		model.JournalCanvasDiscarded,
		model.JournalGemDeleted,
	}, f.events.kinds())
	for _, e := range f.events.entries {
		assert.Equal(t, gem.ID, e.GemID)
		assert.False(t, e.OccurredAt.IsZero())
	}
}

func TestStudio_DeleteKnowledgeBase(t *testing.T) {
	f := newFixture(t)
	group, err := f.studio.SaveKnowledgeBaseFromText(context.Background(), "", "Docs", "https://a.example")
	require.NoError(t, err)

	require.NoError(t, f.studio.DeleteKnowledgeBase(context.Background(), group.ID, AlwaysConfirm))
	err = f.studio.DeleteKnowledgeBase(context.Background(), group.ID, AlwaysConfirm)
	assert.ErrorIs(t, err, ErrKnowledgeNotFound)
}

func TestStudio_LaunchRejectedWhileCanvasUnderReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gem := startSessionWithHello(t, f)

	pending, err := f.studio.EndSession(ctx, gem.ID)
	require.NoError(t, err)

	_, err = f.studio.Launch(gem.ID)
	assert.ErrorIs(t, err, ErrCanvasBusy)

	other := f.createGem(t)
	_, err = f.studio.Launch(other.ID)
	require.NoError(t, err)

	committed, err := f.studio.AcceptCanvas(ctx, gem.ID, pending.Canvas.ID)
	require.NoError(t, err)
	assert.Empty(t, committed.ChatHistory)
	assert.Empty(t, f.gems.Get(gem.ID).ChatHistory)

	sess, err := f.studio.Launch(gem.ID)
	require.NoError(t, err)
	assert.Empty(t, sess.History())

	_, err = sess.SendMessage(ctx, "next")
	require.NoError(t, err)
	saved := f.gems.Get(gem.ID).ChatHistory
	require.Len(t, saved, 2)
	assert.Equal(t, "next", saved[0].Text)

	next, err := f.studio.EndSession(ctx, gem.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	_, canvases := f.gateway.calls()
	assert.Equal(t, 2, canvases)
	assert.Equal(t, "next", f.gateway.canvasHistory[0].Text)
}

func TestStudio_RelaunchAfterDiscardResumesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gem := startSessionWithHello(t, f)

	_, err := f.studio.EndSession(ctx, gem.ID)
	require.NoError(t, err)
	_, err = f.studio.DiscardCanvas(ctx)
	require.NoError(t, err)

	sess, err := f.studio.Launch(gem.ID)
	require.NoError(t, err)
	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Text)
}
