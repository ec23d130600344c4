package regnumber

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hirewire-api/internal/domain"
)

const (
	minLength = 6
	maxLength = 24
)

// pattern is a named regional/regulatory registration-number format.
// Patterns are evaluated in order; the first match is the primary one, but
// every match is reported.
type pattern struct {
	Name string
	Re   *regexp.Regexp
}

var patterns = []pattern{
	{Name: "state_board", Re: regexp.MustCompile(`^[A-Z]{2}/INST/\d{4}/\d{3,6}$`)},
	{Name: "university_grants", Re: regexp.MustCompile(`^UGC-\d{5,8}$`)},
	{Name: "technical_council", Re: regexp.MustCompile(`^[A-Z]{2}-TEC-\d{6}$`)},
	{Name: "legacy_numeric", Re: regexp.MustCompile(`^\d{8,12}$`)},
}

// stateNames resolves the 2-letter regional prefix some formats carry.
var stateNames = map[string]string{
	"AP": "Andhra Pradesh",
	"DL": "Delhi",
	"GJ": "Gujarat",
	"KA": "Karnataka",
	"KL": "Kerala",
	"MH": "Maharashtra",
	"RJ": "Rajasthan",
	"TN": "Tamil Nadu",
	"UP": "Uttar Pradesh",
	"WB": "West Bengal",
}

// FormatResult reports how a value matched the known pattern set.
type FormatResult struct {
	IsValid         bool     `json:"is_valid"`
	PrimaryPattern  string   `json:"primary_pattern,omitempty"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	DetectedState   string   `json:"detected_state,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// UniquenessResult reports whether a value is already registered. The owner's
// email is masked so validation errors never leak PII.
type UniquenessResult struct {
	IsUnique    bool   `json:"is_unique"`
	MaskedOwner string `json:"masked_owner,omitempty"`
}

// Result is the outcome of a full validation pipeline run.
type Result struct {
	Valid      bool              `json:"valid"`
	Format     *FormatResult     `json:"format,omitempty"`
	Uniqueness *UniquenessResult `json:"uniqueness,omitempty"`
	Authority  string            `json:"authority_check,omitempty"` // "passed" | "skipped"
	Cached     bool              `json:"cached"`
}

// Options toggles pipeline stages.
type Options struct {
	// CheckAuthority runs the simulated external government registry check.
	CheckAuthority bool
}

type Service interface {
	ValidateFormat(value string) FormatResult
	CheckUniqueness(ctx context.Context, value string) (UniquenessResult, error)
	Validate(ctx context.Context, value string, opts Options) (*Result, error)
}

type userStore interface {
	GetByRegistrationNumber(ctx context.Context, regNumber string) (*domain.User, error)
}

type rateLimiter interface {
	CheckRateLimit(identifier string) bool
}

type cacheEntry struct {
	result   Result
	cachedAt time.Time
}

type service struct {
	users   userStore
	limiter rateLimiter

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[string]cacheEntry

	now func() time.Time
}

func NewService(users userStore, limiter rateLimiter, cacheTTL time.Duration) Service {
	return &service{
		users:    users,
		limiter:  limiter,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// ValidateFormat checks length bounds and matches against the ordered pattern
// set. Pure rule evaluation, no IO.
func (s *service) ValidateFormat(value string) FormatResult {
	v := normalize(value)
	if len(v) < minLength || len(v) > maxLength {
		return FormatResult{IsValid: false, Reason: fmt.Sprintf("length must be between %d and %d characters", minLength, maxLength)}
	}

	var matched []string
	for _, p := range patterns {
		if p.Re.MatchString(v) {
			matched = append(matched, p.Name)
		}
	}
	if len(matched) == 0 {
		return FormatResult{IsValid: false, Reason: "does not match any known registration format"}
	}

	res := FormatResult{
		IsValid:         true,
		PrimaryPattern:  matched[0],
		MatchedPatterns: matched,
	}
	if len(v) >= 2 {
		if state, ok := stateNames[v[:2]]; ok {
			res.DetectedState = state
		}
	}
	return res
}

// CheckUniqueness asks the user store whether the value is already taken.
func (s *service) CheckUniqueness(ctx context.Context, value string) (UniquenessResult, error) {
	existing, err := s.users.GetByRegistrationNumber(ctx, normalize(value))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return UniquenessResult{IsUnique: true}, nil
		}
		return UniquenessResult{}, err
	}
	return UniquenessResult{IsUnique: false, MaskedOwner: maskEmail(existing.Email)}, nil
}

// Validate runs the full pipeline: rate-limit gate, format, uniqueness, then
// the optional simulated authority check, short-circuiting on the first
// failure. Successful full validations are cached so a registration form
// re-submitting the same number doesn't repeat the uniqueness scan.
func (s *service) Validate(ctx context.Context, value string, opts Options) (*Result, error) {
	key := normalize(value)

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && s.now().Sub(entry.cachedAt) < s.cacheTTL {
		cached := entry.result
		cached.Cached = true
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	if !s.limiter.CheckRateLimit(key) {
		return nil, fmt.Errorf("too many validation requests: %w", domain.ErrRateLimited)
	}

	format := s.ValidateFormat(key)
	if !format.IsValid {
		return &Result{Valid: false, Format: &format}, nil
	}

	unique, err := s.CheckUniqueness(ctx, key)
	if err != nil {
		return nil, err
	}
	if !unique.IsUnique {
		return &Result{Valid: false, Format: &format, Uniqueness: &unique}, nil
	}

	result := Result{Valid: true, Format: &format, Uniqueness: &unique, Authority: "skipped"}
	if opts.CheckAuthority {
		// Stand-in for the external government registry integration: format
		// and uniqueness passing is treated as an authority pass.
		result.Authority = "passed"
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{result: result, cachedAt: s.now()}
	s.mu.Unlock()
	return &result, nil
}

func normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// maskEmail reduces an address to an ab***@domain hint.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) <= 2 {
		return local[:1] + "***" + email[at:]
	}
	return local[:2] + "***" + email[at:]
}
