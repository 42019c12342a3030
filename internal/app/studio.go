package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

// Studio is the application state: the registries, the live sessions and
// the canvas under review.
type Studio struct {
	gems    *GemRegistry
	groups  *KnowledgeRegistry
	canvas  *CanvasWorkflow
	gateway Gateway
	events  EventPublisher
	log     *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStudio wires the registries to the gateway. events may be nil.
func NewStudio(gems *GemRegistry, groups *KnowledgeRegistry, gateway Gateway, events EventPublisher, log *logger.Logger) *Studio {
	return &Studio{
		gems:     gems,
		groups:   groups,
		canvas:   NewCanvasWorkflow(gems, gateway, log),
		gateway:  gateway,
		events:   events,
		log:      log.With("component", "studio"),
		sessions: make(map[string]*Session),
	}
}

func (s *Studio) Gems() *GemRegistry {
	return s.gems
}

func (s *Studio) KnowledgeBases() *KnowledgeRegistry {
	return s.groups
}

func (s *Studio) Canvas() *CanvasWorkflow {
	return s.canvas
}

func (s *Studio) CreateGem(ctx context.Context, persona model.Persona) (*model.Gem, error) {
	persona.Name = strings.TrimSpace(persona.Name)
	persona.StudentName = strings.TrimSpace(persona.StudentName)
	persona.SystemInstruction = strings.TrimSpace(persona.SystemInstruction)
	persona.KnowledgeBaseGroupID = strings.TrimSpace(persona.KnowledgeBaseGroupID)
	if persona.Name == "" || persona.StudentName == "" || persona.SystemInstruction == "" {
		return nil, ErrInvalidInput
	}
	if err := s.checkGroup(persona.KnowledgeBaseGroupID); err != nil {
		return nil, err
	}

	gem, err := s.gems.Create(ctx, persona)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, model.JournalEntry{
		Kind:    model.JournalGemCreated,
		GemID:   gem.ID,
		GemName: gem.Name,
		Summary: fmt.Sprintf("%s for %s, writing in %s", gem.Name, gem.StudentName, gem.VisualSignature),
	})
	return gem, nil
}

func (s *Studio) UpdateGem(ctx context.Context, id string, patch model.PersonaPatch) (*model.Gem, error) {
	for _, field := range []*string{patch.Name, patch.StudentName, patch.SystemInstruction} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if *field == "" {
			return nil, ErrInvalidInput
		}
	}
	if patch.KnowledgeBaseGroupID != nil {
		*patch.KnowledgeBaseGroupID = strings.TrimSpace(*patch.KnowledgeBaseGroupID)
		if err := s.checkGroup(*patch.KnowledgeBaseGroupID); err != nil {
			return nil, err
		}
	}

	gem, err := s.gems.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if gem == nil {
		return nil, ErrGemNotFound
	}
	return gem, nil
}

// DeleteGem removes the Gem and drops its live session.
func (s *Studio) DeleteGem(ctx context.Context, id string, confirmer Confirmer) error {
	gem := s.gems.Get(id)
	removed, err := s.gems.Delete(ctx, id, confirmer)
	if err != nil && !removed {
		return err
	}
	if !removed {
		return ErrGemNotFound
	}
	s.CloseSession(id)
	if gem != nil {
		s.publish(ctx, model.JournalEntry{
			Kind:    model.JournalGemDeleted,
			GemID:   id,
			GemName: gem.Name,
			Summary: fmt.Sprintf("%s deleted with %d canvases", gem.Name, len(gem.Canvases)),
		})
	}
	return err
}

func (s *Studio) SaveKnowledgeBase(ctx context.Context, group model.KnowledgeBaseGroup) (model.KnowledgeBaseGroup, error) {
	return s.groups.Save(ctx, group)
}

func (s *Studio) SaveKnowledgeBaseFromText(ctx context.Context, id, name, urlsText string) (model.KnowledgeBaseGroup, error) {
	return s.groups.SaveFromText(ctx, id, name, urlsText)
}

func (s *Studio) DeleteKnowledgeBase(ctx context.Context, id string, confirmer Confirmer) error {
	removed, err := s.groups.Delete(ctx, id, confirmer)
	if err != nil && !removed {
		return err
	}
	if !removed {
		return ErrKnowledgeNotFound
	}
	return err
}

// Launch returns the Gem's live session, starting one from the saved history
// when none is active. A Gem whose canvas is still open cannot be launched
// until the canvas is accepted or discarded.
func (s *Studio) Launch(gemID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.canvas.Holds(gemID) {
		return nil, ErrCanvasBusy
	}

	if sess, ok := s.sessions[gemID]; ok && sess.State() != SessionEnded {
		return sess, nil
	}
	gem := s.gems.Get(gemID)
	if gem == nil {
		return nil, ErrGemNotFound
	}
	sess := newSession(gem, s.gems, s.groups, s.canvas, s.gateway, s.log)
	s.sessions[gemID] = sess
	return sess, nil
}

func (s *Studio) Session(gemID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[gemID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// EndSession ends the Gem's session and starts its canvas. The session leaves
// the active set once it has ended, even when the canvas failed.
func (s *Studio) EndSession(ctx context.Context, gemID string) (*PendingCanvas, error) {
	sess, err := s.Session(gemID)
	if err != nil {
		return nil, err
	}
	pending, err := sess.EndSession(ctx)
	if sess.State() == SessionEnded {
		s.forget(gemID, sess)
	}
	return pending, err
}

// CloseSession leaves the session without a canvas. The history stays saved
// on the Gem.
func (s *Studio) CloseSession(gemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[gemID]
	delete(s.sessions, gemID)
	return ok
}

func (s *Studio) AcceptCanvas(ctx context.Context, gemID, canvasID string) (*model.Gem, error) {
	gem, pending, err := s.canvas.Accept(ctx, gemID, canvasID)
	if pending == nil {
		return nil, err
	}
	if gem != nil {
		// the archived turns must not come back through a live session
		s.CloseSession(gemID)
		summary := fmt.Sprintf("canvas archived for %s", pending.StudentName)
		if sig := pending.Canvas.ProposedVisualSignature; sig != "" {
			summary += ", now writing in " + sig
		}
		s.publish(ctx, model.JournalEntry{
			Kind:     model.JournalCanvasArchived,
			GemID:    gemID,
			GemName:  gem.Name,
			CanvasID: canvasID,
			Summary:  summary,
		})
	}
	return gem, err
}

func (s *Studio) DiscardCanvas(ctx context.Context) (*PendingCanvas, error) {
	pending, err := s.canvas.Discard()
	if err != nil {
		return nil, err
	}
	s.publish(ctx, model.JournalEntry{
		Kind:     model.JournalCanvasDiscarded,
		GemID:    pending.GemID,
		GemName:  pending.GemName,
		CanvasID: pending.Canvas.ID,
		Summary:  fmt.Sprintf("canvas for %s discarded", pending.StudentName),
	})
	return pending, nil
}

func (s *Studio) forget(gemID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[gemID] == sess {
		delete(s.sessions, gemID)
	}
}

func (s *Studio) checkGroup(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.groups.Resolve(id); !ok {
		return fmt.Errorf("%w: unknown knowledge base %q", ErrInvalidInput, id)
	}
	return nil
}

func (s *Studio) publish(ctx context.Context, entry model.JournalEntry) {
	if s.events == nil {
		return
	}
	entry.OccurredAt = time.Now()
	if err := s.events.Publish(ctx, entry); err != nil {
		s.log.Warn("publish journal entry failed", "kind", entry.Kind, "gem_id", entry.GemID, "error", err)
	}
}
