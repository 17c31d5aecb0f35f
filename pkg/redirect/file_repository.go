package redirect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	rulesFileName   = "redirects.json"
	markersFileName = "first_login_markers.json"
)

// FileRuleRepository implements RuleRepository using file-based storage.
// Rules are stored per role, then per kind.
type FileRuleRepository struct {
	dataDir string
	rules   map[ruleKey]Rule
	mutex   sync.RWMutex
}

// ruleData represents the structure of data stored in the JSON file
type ruleData struct {
	Roles map[string]map[Kind]Rule `json:"roles"`
}

// NewFileRuleRepository creates a new file-based rule repository
func NewFileRuleRepository(dataDir string) (*FileRuleRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRuleRepository{
		dataDir: dataDir,
		rules:   make(map[ruleKey]Rule),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRuleRepository) GetRedirectURL(ctx context.Context, role string, kind Kind) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.rules[ruleKey{role: role, kind: kind}].URL, nil
}

func (r *FileRuleRepository) SetRedirectURL(ctx context.Context, role string, kind Kind, url string) error {
	if role == "" {
		return ErrEmptyRole
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}
	url = NormalizeURL(url)
	if url == "" {
		return r.DeleteRedirectURL(ctx, role, kind)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := ruleKey{role: role, kind: kind}
	previous, existed := r.rules[key]
	r.rules[key] = Rule{Role: role, Kind: kind, URL: url, UpdatedAt: time.Now().UTC()}

	if err := r.save(); err != nil {
		if existed {
			r.rules[key] = previous
		} else {
			delete(r.rules, key)
		}
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileRuleRepository) DeleteRedirectURL(ctx context.Context, role string, kind Kind) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := ruleKey{role: role, kind: kind}
	previous, existed := r.rules[key]
	if !existed {
		return nil
	}
	delete(r.rules, key)

	if err := r.save(); err != nil {
		r.rules[key] = previous
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileRuleRepository) FindRules(ctx context.Context) ([]Rule, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

func (r *FileRuleRepository) load() error {
	var data ruleData
	found, err := readJSONFile(filepath.Join(r.dataDir, rulesFileName), &data)
	if err != nil || !found {
		return err
	}

	r.rules = make(map[ruleKey]Rule)
	for role, kinds := range data.Roles {
		for kind, rule := range kinds {
			if !kind.Valid() || NormalizeURL(rule.URL) == "" {
				continue
			}
			rule.Role, rule.Kind = role, kind
			r.rules[ruleKey{role: role, kind: kind}] = rule
		}
	}
	return nil
}

func (r *FileRuleRepository) save() error {
	data := ruleData{Roles: make(map[string]map[Kind]Rule)}
	for key, rule := range r.rules {
		if data.Roles[key.role] == nil {
			data.Roles[key.role] = make(map[Kind]Rule)
		}
		data.Roles[key.role][key.kind] = rule
	}
	return writeJSONFile(r.dataDir, rulesFileName, data)
}

// FileMarkerRepository implements MarkerRepository using file-based storage
type FileMarkerRepository struct {
	dataDir string
	markers map[uuid.UUID]string
	mutex   sync.Mutex
}

type markerData struct {
	Markers map[uuid.UUID]string `json:"markers"`
}

// NewFileMarkerRepository creates a new file-based marker repository
func NewFileMarkerRepository(dataDir string) (*FileMarkerRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileMarkerRepository{
		dataDir: dataDir,
		markers: make(map[uuid.UUID]string),
	}

	var data markerData
	found, err := readJSONFile(filepath.Join(dataDir, markersFileName), &data)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if found && data.Markers != nil {
		repo.markers = data.Markers
	}

	return repo, nil
}

func (r *FileMarkerRepository) SetMarker(ctx context.Context, userID uuid.UUID, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous, existed := r.markers[userID]
	r.markers[userID] = value
	if err := r.save(); err != nil {
		if existed {
			r.markers[userID] = previous
		} else {
			delete(r.markers, userID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *FileMarkerRepository) GetMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.markers[userID], nil
}

func (r *FileMarkerRepository) DeleteMarker(ctx context.Context, userID uuid.UUID) error {
	_, err := r.TakeMarker(ctx, userID)
	return err
}

func (r *FileMarkerRepository) TakeMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	value, existed := r.markers[userID]
	if !existed {
		return "", nil
	}
	delete(r.markers, userID)

	if err := r.save(); err != nil {
		r.markers[userID] = value
		return "", fmt.Errorf("failed to save: %w", err)
	}
	return value, nil
}

func (r *FileMarkerRepository) save() error {
	return writeJSONFile(r.dataDir, markersFileName, markerData{Markers: r.markers})
}

// readJSONFile decodes path into v. A missing or empty file is not an error.
func readJSONFile(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return true, nil
}

// writeJSONFile writes v to dataDir/name atomically
func writeJSONFile(dataDir, name string, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(dataDir, name+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filepath.Join(dataDir, name)); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
