package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURLList(t *testing.T) {
	in := "  https://a.example/doc \r\n\n https://b.example\nhttps://a.example/doc\n   \n"
	assert.Equal(t, []string{"https://a.example/doc", "https://b.example"}, ParseURLList(in))
}

func TestParseURLList_Empty(t *testing.T) {
	assert.Empty(t, ParseURLList(""))
	assert.Empty(t, ParseURLList("\n \n"))
}

func TestGemClone_IsDeep(t *testing.T) {
	g := &Gem{ID: "gem-1", ChatHistory: []Message{{ID: "m1", Text: "hi"}}}
	c := g.Clone()
	c.ChatHistory[0].Text = "changed"
	assert.Equal(t, "hi", g.ChatHistory[0].Text)
}

func TestApplyPatch_OnlySuppliedFields(t *testing.T) {
	g := &Gem{Name: "A", StudentName: "B", SystemInstruction: "sys", KnowledgeBaseGroupID: "group-1"}
	name := "A2"
	unbind := ""
	g.ApplyPatch(PersonaPatch{Name: &name, KnowledgeBaseGroupID: &unbind})
	assert.Equal(t, "A2", g.Name)
	assert.Equal(t, "B", g.StudentName)
	assert.Equal(t, "sys", g.SystemInstruction)
	assert.Empty(t, g.KnowledgeBaseGroupID)
}
