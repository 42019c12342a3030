package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gemcanvas/internal/model"
)

// CurrentVersion is the layout written by SaveGems and SaveGroups. Version 1
// is the bare JSON array the browser app kept in localStorage.
const CurrentVersion = 2

type envelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

type rawMessage struct {
	ID          *string `json:"id"`
	Sender      *string `json:"sender"`
	Text        *string `json:"text"`
	Timestamp   *string `json:"timestamp"`
	IsLoading   *bool   `json:"isLoading"`
	AudioBase64 *string `json:"audioBase64"`
}

type rawCanvas struct {
	ID                      *string `json:"id"`
	CreatedAt               *string `json:"createdAt"`
	Content                 *string `json:"content"`
	ProposedVisualSignature *string `json:"proposedVisualSignature"`
	PersonalizedPractice    *string `json:"personalizedPractice"`
}

type rawGem struct {
	ID                   *string      `json:"id"`
	Name                 *string      `json:"name"`
	StudentName          *string      `json:"studentName"`
	SystemInstruction    *string      `json:"systemInstruction"`
	VisualSignature      *string      `json:"visualSignature"`
	KnowledgeBaseGroupID *string      `json:"knowledgeBaseGroupId"`
	ChatHistory          []rawMessage `json:"chatHistory"`
	Canvases             []rawCanvas  `json:"canvases"`
	CreatedAt            *string      `json:"createdAt"`
}

type rawGroup struct {
	ID   *string  `json:"id"`
	Name *string  `json:"name"`
	URLs []string `json:"urls"`
}

// MigrationReport counts what the load-time migration had to repair.
type MigrationReport struct {
	FromVersion     int `json:"from_version"`
	Dropped         int `json:"dropped"`
	DefaultedStyles int `json:"defaulted_styles"`
	ResolvedPending int `json:"resolved_pending"`

	// UnknownStyles lists saved signatures outside the palette as gemID=font.
	// They are kept as saved.
	UnknownStyles []string `json:"unknown_styles,omitempty"`
}

// unwrap returns the item array of a stored record and the layout version.
func unwrap(data []byte) (json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty record")
	}
	switch trimmed[0] {
	case '[':
		return trimmed, 1, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, 0, fmt.Errorf("decode envelope failed: %w", err)
		}
		if env.Version <= 0 {
			return nil, 0, fmt.Errorf("envelope has no version")
		}
		if len(env.Items) == 0 || string(env.Items) == "null" {
			return json.RawMessage("[]"), env.Version, nil
		}
		return env.Items, env.Version, nil
	default:
		return nil, 0, fmt.Errorf("unexpected record prefix %q", trimmed[0])
	}
}

func migrateGems(data []byte) ([]*model.Gem, MigrationReport, error) {
	items, version, err := unwrap(data)
	if err != nil {
		return nil, MigrationReport{}, err
	}
	var raws []rawGem
	if err := json.Unmarshal(items, &raws); err != nil {
		return nil, MigrationReport{}, fmt.Errorf("decode gems failed: %w", err)
	}

	report := MigrationReport{FromVersion: version}
	gems := make([]*model.Gem, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		id := strings.TrimSpace(str(raw.ID))
		if id == "" {
			report.Dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			report.Dropped++
			continue
		}
		seen[id] = struct{}{}
		gems = append(gems, migrateGem(id, raw, &report))
	}
	return gems, report, nil
}

func migrateGem(id string, raw rawGem, report *MigrationReport) *model.Gem {
	createdAt := parseTime(raw.CreatedAt, time.Unix(0, 0).UTC())

	signature := strings.TrimSpace(str(raw.VisualSignature))
	switch {
	case signature == "":
		signature = model.DefaultVisualSignature()
		report.DefaultedStyles++
	case !model.IsVisualSignature(signature):
		report.UnknownStyles = append(report.UnknownStyles, id+"="+signature)
	}

	gem := &model.Gem{
		ID:                   id,
		Name:                 str(raw.Name),
		StudentName:          str(raw.StudentName),
		SystemInstruction:    str(raw.SystemInstruction),
		VisualSignature:      signature,
		KnowledgeBaseGroupID: strings.TrimSpace(str(raw.KnowledgeBaseGroupID)),
		ChatHistory:          make([]model.Message, 0, len(raw.ChatHistory)),
		Canvases:             make([]model.ConnectionCanvas, 0, len(raw.Canvases)),
		CreatedAt:            createdAt,
	}

	for i, rm := range raw.ChatHistory {
		msg := model.Message{
			ID:          str(rm.ID),
			Sender:      model.Sender(str(rm.Sender)),
			Text:        str(rm.Text),
			Timestamp:   parseTime(rm.Timestamp, createdAt),
			AudioBase64: str(rm.AudioBase64),
		}
		if msg.ID == "" {
			msg.ID = fmt.Sprintf("msg-%s-%d", id, i)
		}
		if !model.IsSender(msg.Sender) {
			msg.Sender = model.SenderSystem
		}
		if rm.IsLoading != nil && *rm.IsLoading {
			// the reply never arrived; older layouts saved the placeholder
			msg.Sender = model.SenderSystem
			msg.Text = model.ChatErrorText
			msg.AudioBase64 = ""
			report.ResolvedPending++
		}
		if msg.Sender != model.SenderModel {
			msg.AudioBase64 = ""
		}
		gem.ChatHistory = append(gem.ChatHistory, msg)
	}

	for i, rc := range raw.Canvases {
		canvas := model.ConnectionCanvas{
			ID:                      str(rc.ID),
			CreatedAt:               parseTime(rc.CreatedAt, createdAt),
			Content:                 str(rc.Content),
			ProposedVisualSignature: str(rc.ProposedVisualSignature),
			PersonalizedPractice:    str(rc.PersonalizedPractice),
		}
		if canvas.ID == "" {
			canvas.ID = fmt.Sprintf("canvas-%s-%d", id, i)
		}
		if strings.TrimSpace(canvas.Content) == "" {
			canvas.Content = model.CanvasContentPlaceholder
		}
		gem.Canvases = append(gem.Canvases, canvas)
	}
	return gem
}

func migrateGroups(data []byte) ([]model.KnowledgeBaseGroup, MigrationReport, error) {
	items, version, err := unwrap(data)
	if err != nil {
		return nil, MigrationReport{}, err
	}
	var raws []rawGroup
	if err := json.Unmarshal(items, &raws); err != nil {
		return nil, MigrationReport{}, fmt.Errorf("decode groups failed: %w", err)
	}

	report := MigrationReport{FromVersion: version}
	groups := make([]model.KnowledgeBaseGroup, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		id := strings.TrimSpace(str(raw.ID))
		if id == "" {
			report.Dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			report.Dropped++
			continue
		}
		seen[id] = struct{}{}
		groups = append(groups, model.KnowledgeBaseGroup{
			ID:   id,
			Name: str(raw.Name),
			URLs: model.NormalizeURLs(raw.URLs),
		})
	}
	return groups, report, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func parseTime(p *string, fallback time.Time) time.Time {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*p))
	if err != nil {
		return fallback
	}
	return t
}
