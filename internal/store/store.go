package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

const (
	GemsKey   = "esl-gems"
	GroupsKey = "esl-gem-url-groups"
)

type Store struct {
	kv        KV
	gemsKey   string
	groupsKey string
	log       *logger.Logger
}

func New(kv KV, keyPrefix string, log *logger.Logger) *Store {
	return &Store{
		kv:        kv,
		gemsKey:   keyPrefix + GemsKey,
		groupsKey: keyPrefix + GroupsKey,
		log:       log.With("component", "store"),
	}
}

// LoadGems reads and migrates the Gem collection. Unreadable content yields
// an empty collection; only a backend failure is returned as an error.
func (s *Store) LoadGems(ctx context.Context) ([]*model.Gem, error) {
	gems, _, err := s.loadGems(ctx)
	return gems, err
}

func (s *Store) loadGems(ctx context.Context) ([]*model.Gem, MigrationReport, error) {
	data, ok, err := s.kv.Get(ctx, s.gemsKey)
	if err != nil {
		return nil, MigrationReport{}, fmt.Errorf("load gems failed: %w", err)
	}
	if !ok {
		return []*model.Gem{}, MigrationReport{FromVersion: CurrentVersion}, nil
	}
	gems, report, err := migrateGems(data)
	if err != nil {
		s.log.Error("failed to parse gems, starting empty", "key", s.gemsKey, "error", err)
		return []*model.Gem{}, MigrationReport{}, nil
	}
	s.logReport("gems", report)
	return gems, report, nil
}

func (s *Store) SaveGems(ctx context.Context, gems []*model.Gem) error {
	items := make([]*model.Gem, 0, len(gems))
	for _, g := range gems {
		if g != nil {
			items = append(items, g)
		}
	}
	return s.put(ctx, s.gemsKey, items)
}

// LoadGroups reads the knowledge-base groups with the same recovery rules
// as LoadGems.
func (s *Store) LoadGroups(ctx context.Context) ([]model.KnowledgeBaseGroup, error) {
	groups, _, err := s.loadGroups(ctx)
	return groups, err
}

func (s *Store) loadGroups(ctx context.Context) ([]model.KnowledgeBaseGroup, MigrationReport, error) {
	data, ok, err := s.kv.Get(ctx, s.groupsKey)
	if err != nil {
		return nil, MigrationReport{}, fmt.Errorf("load groups failed: %w", err)
	}
	if !ok {
		return []model.KnowledgeBaseGroup{}, MigrationReport{FromVersion: CurrentVersion}, nil
	}
	groups, report, err := migrateGroups(data)
	if err != nil {
		s.log.Error("failed to parse knowledge bases, starting empty", "key", s.groupsKey, "error", err)
		return []model.KnowledgeBaseGroup{}, MigrationReport{}, nil
	}
	s.logReport("groups", report)
	return groups, report, nil
}

func (s *Store) SaveGroups(ctx context.Context, groups []model.KnowledgeBaseGroup) error {
	if groups == nil {
		groups = []model.KnowledgeBaseGroup{}
	}
	return s.put(ctx, s.groupsKey, groups)
}

// Migrate rewrites both records in the current layout.
func (s *Store) Migrate(ctx context.Context) (gems MigrationReport, groups MigrationReport, err error) {
	gemList, gems, err := s.loadGems(ctx)
	if err != nil {
		return gems, groups, err
	}
	groupList, groups, err := s.loadGroups(ctx)
	if err != nil {
		return gems, groups, err
	}
	if err := s.SaveGems(ctx, gemList); err != nil {
		return gems, groups, err
	}
	if err := s.SaveGroups(ctx, groupList); err != nil {
		return gems, groups, err
	}
	return gems, groups, nil
}

func (s *Store) put(ctx context.Context, key string, items interface{}) error {
	itemBytes, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	payload, err := json.Marshal(envelope{Version: CurrentVersion, Items: itemBytes})
	if err != nil {
		return fmt.Errorf("marshal %s envelope failed: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s failed: %w", key, err)
	}
	return nil
}

func (s *Store) logReport(collection string, r MigrationReport) {
	if r.FromVersion == CurrentVersion && r.Dropped == 0 && r.DefaultedStyles == 0 && r.ResolvedPending == 0 && len(r.UnknownStyles) == 0 {
		return
	}
	s.log.Warn("migrated stored records",
		"collection", collection,
		"from_version", r.FromVersion,
		"dropped", r.Dropped,
		"defaulted_styles", r.DefaultedStyles,
		"resolved_pending", r.ResolvedPending,
		"unknown_styles", r.UnknownStyles,
	)
}
