package model

import "time"

type Gem struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	StudentName          string             `json:"studentName"`
	SystemInstruction    string             `json:"systemInstruction"`
	VisualSignature      string             `json:"visualSignature"`
	KnowledgeBaseGroupID string             `json:"knowledgeBaseGroupId,omitempty"`
	ChatHistory          []Message          `json:"chatHistory"`
	Canvases             []ConnectionCanvas `json:"canvases"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// Persona holds the user-editable definition of a Gem.
type Persona struct {
	Name                 string
	StudentName          string
	SystemInstruction    string
	KnowledgeBaseGroupID string
}

// PersonaPatch carries the fields supplied to an update; nil means untouched.
// An empty KnowledgeBaseGroupID unbinds the knowledge base.
type PersonaPatch struct {
	Name                 *string
	StudentName          *string
	SystemInstruction    *string
	KnowledgeBaseGroupID *string
}

func (g *Gem) Clone() *Gem {
	if g == nil {
		return nil
	}
	out := *g
	out.ChatHistory = CloneMessages(g.ChatHistory)
	out.Canvases = make([]ConnectionCanvas, len(g.Canvases))
	copy(out.Canvases, g.Canvases)
	return &out
}

// ApplyPatch merges the supplied persona fields into the Gem.
func (g *Gem) ApplyPatch(p PersonaPatch) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.StudentName != nil {
		g.StudentName = *p.StudentName
	}
	if p.SystemInstruction != nil {
		g.SystemInstruction = *p.SystemInstruction
	}
	if p.KnowledgeBaseGroupID != nil {
		g.KnowledgeBaseGroupID = *p.KnowledgeBaseGroupID
	}
}
