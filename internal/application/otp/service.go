package otp

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/hirewire-api/internal/config"
	"github.com/hirewire-api/internal/domain"
)

// PurposeVerification and friends tag the context an OTP was issued for.
// A code issued for one purpose never validates another.
const (
	PurposeVerification = "verification"
	PurposeReset        = "reset"
	PurposePhone        = "phone"
)

const codeLength = 6

// Status is a read-only snapshot of an OTP record. It exposes attempt counts
// for authenticated self-service; verify responses never do.
type Status struct {
	Purpose     string `json:"purpose"`
	Verified    bool   `json:"verified"`
	Expired     bool   `json:"expired"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
	ExpiresIn   int    `json:"expires_in_seconds"`
}

// Service issues, validates, and expires short-lived verification codes per
// email address. State lives in process memory for the life of the service;
// a multi-instance deployment would need to move it behind a shared store.
//
// The service never delivers codes itself. Generate returns the code and the
// caller decides the channel (email, SMS).
type Service interface {
	CheckRateLimit(identifier string) bool
	Generate(email, purpose string) (string, error)
	Verify(email, code, purpose string) error
	Status(email string) (*Status, error)
	Resend(email, purpose string) (string, error)
	CleanupExpired() int
	Start()
	Stop()
}

// record is the per-email OTP state. Lifecycle:
// created (Generate) -> mutated on failed attempts -> removed on expiry,
// exhaustion, supersession, or purgeAt after a successful verify.
type record struct {
	code        string
	purpose     string
	createdAt   time.Time
	expiresAt   time.Time
	attempts    int
	maxAttempts int
	verified    bool
	purgeAt     time.Time // zero until verified
}

// window is a fixed rate-limit window. It resets (not slides) once elapsed.
type window struct {
	count int
	start time.Time
}

type service struct {
	cfg config.OTPConfig

	mu      sync.Mutex
	records map[string]*record
	windows map[string]*window

	now  func() time.Time // injectable for tests
	done chan struct{}
	once sync.Once
}

func NewService(cfg config.OTPConfig) Service {
	return &service{
		cfg:     cfg,
		records: make(map[string]*record),
		windows: make(map[string]*window),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Start launches the background sweep loop. Stop terminates it; the service
// remains usable afterwards, only reclamation goes back to being lazy.
func (s *service) Start() {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.CleanupExpired(); n > 0 {
					slog.Info("swept expired OTP state", "removed", n)
				}
			case <-s.done:
				return
			}
		}
	}()
}

func (s *service) Stop() {
	s.once.Do(func() { close(s.done) })
}

// CheckRateLimit returns false once identifier has used up MaxRequests within
// the current window; otherwise it counts the request and returns true.
// Window semantics are elapsed-time reset: an expired window starts over at
// count 1 instead of decaying gradually.
func (s *service) CheckRateLimit(identifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowLocked(normalize(identifier))
}

func (s *service) allowLocked(key string) bool {
	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) > s.cfg.Window {
		s.windows[key] = &window{count: 1, start: now}
		return true
	}
	if w.count >= s.cfg.MaxRequests {
		return false
	}
	w.count++
	return true
}

// Generate issues a fresh code for email, overwriting any live record. The
// previous code, if any, stops validating immediately.
func (s *service) Generate(email, purpose string) (string, error) {
	key := normalize(email)
	if purpose == "" {
		purpose = PurposeVerification
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allowLocked(key) {
		return "", fmt.Errorf("too many OTP requests for %s: %w", key, domain.ErrRateLimited)
	}

	code, err := randomCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	s.records[key] = &record{
		code:        code,
		purpose:     purpose,
		createdAt:   now,
		expiresAt:   now.Add(s.cfg.TTL),
		maxAttempts: s.cfg.MaxAttempts,
	}
	return code, nil
}

// Verify checks code against the live record for email. It fails closed on
// every path except an exact match with a valid purpose: missing record,
// expiry (deletes), exhausted attempts (deletes), already-verified record,
// purpose mismatch, or code mismatch (counts the attempt). On success the
// record is marked verified and scheduled for deletion after the grace
// window so a status check can still observe the outcome.
func (s *service) Verify(email, code, purpose string) error {
	key := normalize(email)
	if purpose == "" {
		purpose = PurposeVerification
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return fmt.Errorf("no OTP for %s: %w", key, domain.ErrNotFound)
	}
	now := s.now()
	if now.After(rec.expiresAt) {
		delete(s.records, key)
		return fmt.Errorf("OTP expired: %w", domain.ErrExpired)
	}
	if rec.verified {
		return fmt.Errorf("OTP already used: %w", domain.ErrInvalidCode)
	}
	if rec.attempts >= rec.maxAttempts {
		delete(s.records, key)
		return fmt.Errorf("OTP attempts exhausted: %w", domain.ErrExhausted)
	}
	if rec.purpose != purpose {
		return fmt.Errorf("OTP purpose mismatch: %w", domain.ErrInvalidCode)
	}
	if rec.code != code {
		rec.attempts++
		if rec.attempts >= rec.maxAttempts {
			delete(s.records, key)
		}
		return fmt.Errorf("OTP does not match: %w", domain.ErrInvalidCode)
	}

	rec.verified = true
	rec.purgeAt = now.Add(s.cfg.VerifiedGrace)
	return nil
}

// Status returns a snapshot of the live record without mutating it.
func (s *service) Status(email string) (*Status, error) {
	key := normalize(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("no OTP for %s: %w", key, domain.ErrNotFound)
	}
	now := s.now()
	remaining := int(rec.expiresAt.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		Purpose:     rec.purpose,
		Verified:    rec.verified,
		Expired:     now.After(rec.expiresAt),
		Attempts:    rec.attempts,
		MaxAttempts: rec.maxAttempts,
		ExpiresIn:   remaining,
	}, nil
}

// Resend drops any live record unconditionally and issues a new code.
// Still subject to the rate limit.
func (s *service) Resend(email, purpose string) (string, error) {
	key := normalize(email)
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return s.Generate(email, purpose)
}

// CleanupExpired removes expired OTP records, verified records past their
// grace deadline, and stale rate-limit windows. Returns the number of OTP
// records removed.
func (s *service) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.records {
		if now.After(rec.expiresAt) || (rec.verified && now.After(rec.purgeAt)) {
			delete(s.records, key)
			removed++
		}
	}
	for key, w := range s.windows {
		if now.Sub(w.start) > s.cfg.Window {
			delete(s.windows, key)
		}
	}
	return removed
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomCode produces a fixed-length numeric code from crypto/rand.
func randomCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
