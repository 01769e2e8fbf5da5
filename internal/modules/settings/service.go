package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/modules/budget"
)

var (
	// ErrUnknownSetting is returned for keys outside Definitions.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrInvalidValue is returned for values outside a setting's range.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Service validates settings and resolves them against their defaults.
type Service struct {
	repo *Repository
	log  zerolog.Logger

	mu       sync.RWMutex
	defaults map[string]float64
}

// NewService creates a settings service backed by repo.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	defaults := make(map[string]float64, len(Definitions))
	for key, def := range Definitions {
		defaults[key] = def.Default
	}
	return &Service{
		repo:     repo,
		log:      log.With().Str("service", "settings").Logger(),
		defaults: defaults,
	}
}

// SetDefault replaces the fallback used when key is not stored. The server
// seeds it from environment configuration.
func (s *Service) SetDefault(key string, value float64) error {
	def, ok := Definitions[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if err := def.check(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.defaults[key] = value
	s.mu.Unlock()
	return nil
}

// Value returns the effective value of key and whether it is stored.
func (s *Service) Value(key string) (float64, bool, error) {
	if _, ok := Definitions[key]; !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	def := s.defaultOf(key)

	raw, err := s.repo.Get(key)
	if err != nil {
		return def, false, err
	}
	if raw == nil {
		return def, false, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Str("value", *raw).Msg("Ignoring unparsable stored setting")
		return def, false, nil
	}
	return v, true, nil
}

// GetAll reports every known setting, sorted by key.
func (s *Service) GetAll() ([]SettingView, error) {
	stored, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	views := make([]SettingView, 0, len(Definitions))
	for key, def := range Definitions {
		view := SettingView{
			Key:         key,
			Value:       s.defaultOf(key),
			Default:     s.defaultOf(key),
			Min:         def.Min,
			Max:         def.Max,
			Description: def.Description,
		}
		if raw, ok := stored[key]; ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				view.Value = v
				view.Stored = true
			}
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Key < views[j].Key })
	return views, nil
}

// Set validates and stores a setting, returning the stored value.
func (s *Service) Set(key string, value interface{}) (float64, error) {
	def, ok := Definitions[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	v, err := toFloat(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	if err := def.check(key, v); err != nil {
		return 0, err
	}

	description := def.Description
	if err := s.repo.Set(key, def.format(v), &description); err != nil {
		return 0, err
	}
	s.log.Info().Str("key", key).Float64("value", v).Msg("Setting updated")
	return v, nil
}

// Reset removes a stored value so the default applies again.
func (s *Service) Reset(key string) error {
	if _, ok := Definitions[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return s.repo.Delete(key)
}

// WeightScale returns the scale used when a request does not give one.
func (s *Service) WeightScale() int64 {
	return int64(s.resolve(KeyWeightScale))
}

// SolverTimeLimit returns the per-run time limit; zero means none.
func (s *Service) SolverTimeLimit() time.Duration {
	return time.Duration(s.resolve(KeySolverTimeLimit) * float64(time.Second))
}

// SolverMaxNodes returns the per-run node limit; zero means none.
func (s *Service) SolverMaxNodes() int64 {
	return int64(s.resolve(KeySolverMaxNodes))
}

// Rules returns the budget rules assembled from the percentage settings.
func (s *Service) Rules() budget.Rules {
	return budget.Rules{
		SavingsFloorPct: int64(s.resolve(KeySavingsFloorPct)),
		NeedsCeilingPct: int64(s.resolve(KeyNeedsCeilingPct)),
		WantsCeilingPct: int64(s.resolve(KeyWantsCeilingPct)),
	}
}

// resolve never fails: a broken store falls back to the default.
func (s *Service) resolve(key string) float64 {
	v, _, err := s.Value(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Using default setting")
	}
	return v
}

func (s *Service) defaultOf(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults[key]
}

func (def Definition) check(key string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidValue, key)
	case v < def.Min || v > def.Max:
		return fmt.Errorf("%w: %s must be within [%g, %g], got %g", ErrInvalidValue, key, def.Min, def.Max, v)
	case def.Integer && v != math.Trunc(v):
		return fmt.Errorf("%w: %s must be a whole number, got %g", ErrInvalidValue, key, v)
	}
	return nil
}

func (def Definition) format(v float64) string {
	if def.Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case nil:
		return 0, errors.New("value is required")
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
}
