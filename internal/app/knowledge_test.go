package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcanvas/internal/model"
)

func TestKnowledgeRegistry_SaveNormalizesURLs(t *testing.T) {
	f := newFixture(t)
	group, err := f.groups.SaveFromText(context.Background(), "", " Grammar ", "https://a.example\r\n\n  https://b.example \nhttps://a.example\n")
	require.NoError(t, err)

	assert.Regexp(t, `^group-`, group.ID)
	assert.Equal(t, "Grammar", group.Name)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, group.URLs)

	updated, err := f.groups.Save(context.Background(), model.KnowledgeBaseGroup{ID: group.ID, Name: "Grammar 2", URLs: []string{"https://c.example"}})
	require.NoError(t, err)
	assert.Equal(t, group.ID, updated.ID)
	require.Len(t, f.groups.List(), 1)
	assert.Equal(t, []string{"https://c.example"}, f.groups.List()[0].URLs)
}

func TestKnowledgeRegistry_NameRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.groups.Save(context.Background(), model.KnowledgeBaseGroup{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.groups.List())
}

func TestKnowledgeRegistry_DeleteLeavesDanglingReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group, err := f.groups.Save(ctx, model.KnowledgeBaseGroup{Name: "Docs", URLs: []string{"https://docs.example"}})
	require.NoError(t, err)

	gem, err := f.studio.CreateGem(ctx, model.Persona{
		Name: "A", StudentName: "B", SystemInstruction: "C", KnowledgeBaseGroupID: group.ID,
	})
	require.NoError(t, err)

	var asked string
	removed, err := f.groups.Delete(ctx, group.ID, ConfirmFunc(func(_ context.Context, prompt string) bool {
		asked = prompt
		return true
	}))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, DeleteKnowledgeBasePrompt, asked)

	assert.Equal(t, group.ID, f.gems.Get(gem.ID).KnowledgeBaseGroupID)
	_, ok := f.groups.Resolve(group.ID)
	assert.False(t, ok)
}

func TestKnowledgeRegistry_DeclinedDelete(t *testing.T) {
	f := newFixture(t)
	group, err := f.groups.Save(context.Background(), model.KnowledgeBaseGroup{Name: "Docs"})
	require.NoError(t, err)

	_, err = f.groups.Delete(context.Background(), group.ID, NeverConfirm)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	_, ok := f.groups.Resolve(group.ID)
	assert.True(t, ok)
}
