package redirect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ruleKey struct {
	role string
	kind Kind
}

// InMemoryRuleRepository implements RuleRepository using in-memory storage
type InMemoryRuleRepository struct {
	mu    sync.RWMutex
	rules map[ruleKey]Rule
}

// NewInMemoryRuleRepository creates a new in-memory rule repository
func NewInMemoryRuleRepository() *InMemoryRuleRepository {
	return &InMemoryRuleRepository{
		rules: make(map[ruleKey]Rule),
	}
}

func (r *InMemoryRuleRepository) GetRedirectURL(ctx context.Context, role string, kind Kind) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rules[ruleKey{role, kind}].URL, nil
}

func (r *InMemoryRuleRepository) SetRedirectURL(ctx context.Context, role string, kind Kind, url string) error {
	if role == "" {
		return ErrEmptyRole
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url = NormalizeURL(url)
	if url == "" {
		delete(r.rules, ruleKey{role, kind})
		return nil
	}
	r.rules[ruleKey{role, kind}] = Rule{Role: role, Kind: kind, URL: url, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *InMemoryRuleRepository) DeleteRedirectURL(ctx context.Context, role string, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rules, ruleKey{role, kind})
	return nil
}

// FindRules returns all rules sorted by role then kind
func (r *InMemoryRuleRepository) FindRules(ctx context.Context) ([]Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Role != rules[j].Role {
			return rules[i].Role < rules[j].Role
		}
		return rules[i].Kind < rules[j].Kind
	})
}

// InMemoryMarkerRepository implements MarkerRepository using in-memory storage
type InMemoryMarkerRepository struct {
	mu      sync.Mutex
	markers map[uuid.UUID]string
}

// NewInMemoryMarkerRepository creates a new in-memory marker repository
func NewInMemoryMarkerRepository() *InMemoryMarkerRepository {
	return &InMemoryMarkerRepository{
		markers: make(map[uuid.UUID]string),
	}
}

func (r *InMemoryMarkerRepository) SetMarker(ctx context.Context, userID uuid.UUID, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markers[userID] = value
	return nil
}

func (r *InMemoryMarkerRepository) GetMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.markers[userID], nil
}

func (r *InMemoryMarkerRepository) DeleteMarker(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.markers, userID)
	return nil
}

func (r *InMemoryMarkerRepository) TakeMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value := r.markers[userID]
	delete(r.markers, userID)
	return value, nil
}
