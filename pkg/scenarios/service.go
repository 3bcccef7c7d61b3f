package scenarios

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay simulates network latency on every call.
const DefaultDelay = 500 * time.Millisecond

// Scenario is one listed survey scenario.
type Scenario struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Respondents int    `json:"respondents"`
	ScoreRange  string `json:"scoreRange"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Respondents *int    `json:"respondents,omitempty"`
	ScoreRange  *string `json:"scoreRange,omitempty"`
}

// ErrInvalidScenario is returned when a scenario has no name.
var ErrInvalidScenario = errors.New("scenarios: name is required")

// Seed returns the demo records.
func Seed() []Scenario {
	return []Scenario{
		{ID: 1, Name: "Scenario A", Respondents: 500, ScoreRange: "0 - 100"},
		{ID: 2, Name: "Scenario B", Respondents: 400, ScoreRange: "10 - 90"},
		{ID: 3, Name: "Scenario C", Respondents: 400, ScoreRange: "10 - 90"},
	}
}

// Option customises a Service.
type Option func(*Service)

// WithDelay overrides the simulated latency. Zero disables it.
func WithDelay(delay time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 {
			s.delay = delay
		}
	}
}

// WithSeed replaces the initial records.
func WithSeed(items []Scenario) Option {
	return func(s *Service) {
		s.items = append([]Scenario(nil), items...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service is a concurrency-safe in-memory scenario store.
type Service struct {
	mu     sync.RWMutex
	items  []Scenario
	delay  time.Duration
	logger *zap.Logger
}

// NewService constructs a Service seeded with the demo records.
func NewService(opts ...Option) *Service {
	s := &Service{
		items:  Seed(),
		delay:  DefaultDelay,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List returns every scenario ordered by id.
func (s *Service) List(ctx context.Context) ([]Scenario, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(s.items), nil
}

// Get returns the scenario with id, or nil when absent.
func (s *Service) Get(ctx context.Context, id int) (*Scenario, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		found := s.items[idx]
		return &found, nil
	}
	return nil, nil
}

// Add stores a new scenario with id = max(existing)+1.
func (s *Service) Add(ctx context.Context, in Scenario) (Scenario, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Scenario{}, ErrInvalidScenario
	}
	if err := s.wait(ctx); err != nil {
		return Scenario{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 0
	for _, item := range s.items {
		if item.ID > next {
			next = item.ID
		}
	}
	in.ID = next + 1
	s.items = append(s.items, in)
	s.logger.Debug("scenario added", zap.Int("id", in.ID), zap.String("name", in.Name))
	return in, nil
}

// Update merges patch into the scenario with id. It returns nil when the
// scenario does not exist.
func (s *Service) Update(ctx context.Context, id int, patch Patch) (*Scenario, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, ErrInvalidScenario
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	item := &s.items[idx]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Respondents != nil {
		item.Respondents = *patch.Respondents
	}
	if patch.ScoreRange != nil {
		item.ScoreRange = *patch.ScoreRange
	}
	updated := *item
	return &updated, nil
}

// Delete removes the scenario with id and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return true, nil
}

// Search matches term case-insensitively against scenario names. An empty
// term matches everything.
func (s *Service) Search(ctx context.Context, term string) ([]Scenario, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]Scenario, 0, len(s.items))
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
		}
	}
	return s.sorted(matches), nil
}

func (s *Service) wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) indexOf(id int) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) sorted(in []Scenario) []Scenario {
	out := append([]Scenario(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if out == nil {
		out = []Scenario{}
	}
	return out
}
