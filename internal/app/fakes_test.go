package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gemcanvas/internal/ai"
	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
	"gemcanvas/internal/store"
)

type chatCall struct {
	prompt            string
	history           []model.Message
	systemInstruction string
	urls              []string
}

type fakeGateway struct {
	mu sync.Mutex

	reply     string
	chatErr   error
	audio     string
	speechErr error
	canvas    ai.CanvasResult
	canvasErr error

	// block, when set, holds CompleteChat until it is closed.
	block   chan struct{}
	entered chan struct{}

	chatCalls     []chatCall
	canvasCalls   int
	canvasHistory []model.Message
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		reply: "hi there",
		audio: "UklGRg==",
		canvas: ai.CanvasParsed{
			Content:           "## A good talk",
			Practice:          "1. I have lived here ___ 2021.",
			ProposedSignature: "Crimson Text",
		},
	}
}

func (f *fakeGateway) CompleteChat(ctx context.Context, prompt string, history []model.Message, systemInstruction string, urls []string) (string, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, chatCall{prompt, model.CloneMessages(history), systemInstruction, urls})
	block, entered := f.block, f.entered
	reply, err := f.reply, f.chatErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return reply, err
}

func (f *fakeGateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audio, f.speechErr
}

func (f *fakeGateway) SynthesizeCanvas(ctx context.Context, history []model.Message, systemInstruction, currentSignature string) (ai.CanvasResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canvasCalls++
	f.canvasHistory = model.CloneMessages(history)
	return f.canvas, f.canvasErr
}

func (f *fakeGateway) calls() (chat, canvas int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chatCalls), f.canvasCalls
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []model.JournalEntry
}

func (p *recordingPublisher) Publish(ctx context.Context, entry model.JournalEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.Kind)
	}
	return out
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type fixture struct {
	kv      *store.MemoryKV
	store   *store.Store
	gems    *GemRegistry
	groups  *KnowledgeRegistry
	gateway *fakeGateway
	events  *recordingPublisher
	studio  *Studio
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	return newFixtureOn(t, kv)
}

func newFixtureOn(t *testing.T, kv *store.MemoryKV) *fixture {
	t.Helper()
	log := logger.NewNop()
	st := store.New(kv, "", log)
	gems, err := NewGemRegistry(context.Background(), st, log)
	require.NoError(t, err)
	groups, err := NewKnowledgeRegistry(context.Background(), st, log)
	require.NoError(t, err)
	gw := newFakeGateway()
	events := &recordingPublisher{}
	return &fixture{
		kv:      kv,
		store:   st,
		gems:    gems,
		groups:  groups,
		gateway: gw,
		events:  events,
		studio:  NewStudio(gems, groups, gw, events, log),
	}
}

func (f *fixture) createGem(t *testing.T) *model.Gem {
	t.Helper()
	gem, err := f.studio.CreateGem(context.Background(), model.Persona{
		Name:              "A",
		StudentName:       "B",
		SystemInstruction: "You are a patient English tutor.",
	})
	require.NoError(t, err)
	return gem
}
