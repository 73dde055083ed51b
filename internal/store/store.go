// Package store provides the file-backed analytical rule catalogue.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/ruleerror"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const backendYAML = "yaml"

// RuleStore keeps analytical rules in a YAML document:
//
//	rules:
//	  - id: R1
//	    name: Marketing partners
//	    status: CONFIRMED
//	    priority: 1
//	    analytical_account_id: CC-MKT
//	    partner_tag_id: marketing
type RuleStore struct {
	RulesFile string
	logger    logging.Logger
	mu        sync.Mutex
}

// NewRuleStore creates a store for the given rules file.
func NewRuleStore(rulesFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RuleStore{
		RulesFile: rulesFile,
		logger:    logger,
	}
}

// FindConfigFile looks for a file in the standard locations: the path as
// given, ./config, ./database and ~/.config/budget-analytics.
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "budget-analytics", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// resolvePath returns the file to read from, or the configured path itself
// when the file does not exist yet (so that saving creates it there).
func (s *RuleStore) resolvePath() (string, bool) {
	filename := s.RulesFile
	if filename == "" {
		filename = "rules.yaml"
	}
	path, err := s.FindConfigFile(filename)
	if err != nil {
		return filename, false
	}
	return path, true
}

// LoadRules reads every rule from the file, in file order. A missing file
// yields an empty catalogue.
func (s *RuleStore) LoadRules() ([]models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *RuleStore) loadLocked() ([]models.Rule, error) {
	path, exists := s.resolvePath()
	if !exists {
		s.logger.WithField(logging.FieldInputFile, path).Warn("Rules file not found, starting with an empty catalogue")
		return []models.Rule{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ruleerror.StoreError{Backend: backendYAML, Operation: "read " + path, Err: err}
	}

	var doc models.RulesConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ruleerror.StoreError{Backend: backendYAML, Operation: "parse " + path, Err: err}
	}
	if doc.Rules == nil {
		doc.Rules = []models.Rule{}
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldInputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(doc.Rules)},
	).Debug("Loaded analytical rules")
	return doc.Rules, nil
}

// SaveRules replaces the catalogue with rules, keeping their order.
func (s *RuleStore) SaveRules(rules []models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(rules)
}

func (s *RuleStore) saveLocked(rules []models.Rule) error {
	path, _ := s.resolvePath()

	data, err := yaml.Marshal(models.RulesConfig{Rules: rules})
	if err != nil {
		return &ruleerror.StoreError{Backend: backendYAML, Operation: "encode rules", Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return &ruleerror.StoreError{Backend: backendYAML, Operation: "create " + dir, Err: err}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &ruleerror.StoreError{Backend: backendYAML, Operation: "write " + tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &ruleerror.StoreError{Backend: backendYAML, Operation: "replace " + path, Err: err}
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
	).Debug("Saved analytical rules")
	return nil
}

// ListRules implements RuleSource.
func (s *RuleStore) ListRules(_ context.Context) ([]models.Rule, error) {
	return s.LoadRules()
}

// GetRule returns the rule with the given id.
func (s *RuleStore) GetRule(_ context.Context, id string) (models.Rule, error) {
	rules, err := s.LoadRules()
	if err != nil {
		return models.Rule{}, err
	}
	for _, rule := range rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return models.Rule{}, &ruleerror.NotFoundError{RuleID: id}
}

// CreateRule appends rule to the catalogue. An empty id is replaced by a
// generated UUID; an id already in use is rejected.
func (s *RuleStore) CreateRule(_ context.Context, rule models.Rule) (models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadLocked()
	if err != nil {
		return models.Rule{}, err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if !rule.Status.IsValid() {
		rule.Status = models.RuleStatusDraft
	}
	for _, existing := range rules {
		if existing.ID == rule.ID {
			return models.Rule{}, &ruleerror.ValidationError{RuleID: rule.ID, Field: "id", Reason: "already exists"}
		}
	}

	if err := s.saveLocked(append(rules, rule)); err != nil {
		return models.Rule{}, err
	}
	return rule, nil
}

// UpdateStatus moves a rule to a new lifecycle status.
func (s *RuleStore) UpdateStatus(_ context.Context, id string, status models.RuleStatus) error {
	if !status.IsValid() {
		return &ruleerror.ValidationError{RuleID: id, Field: "status", Reason: fmt.Sprintf("invalid status %d", int(status))}
	}
	return s.mutate(id, func(rules []models.Rule, i int) []models.Rule {
		rules[i].Status = status
		return rules
	})
}

// DeleteRule removes a rule from the catalogue.
func (s *RuleStore) DeleteRule(_ context.Context, id string) error {
	return s.mutate(id, func(rules []models.Rule, i int) []models.Rule {
		return append(rules[:i], rules[i+1:]...)
	})
}

func (s *RuleStore) mutate(id string, change func(rules []models.Rule, i int) []models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i := range rules {
		if rules[i].ID == id {
			return s.saveLocked(change(rules, i))
		}
	}
	return &ruleerror.NotFoundError{RuleID: id}
}

var _ RuleRepository = (*RuleStore)(nil)
