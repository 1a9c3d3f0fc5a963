package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
	"github.com/schoolmate/schoolmate-core/pkg/config"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
	"github.com/schoolmate/schoolmate-core/pkg/metrics"
)

// CredentialVerifier compares a stored credential against a supplied one.
// The default PlainVerifier reproduces the original's exact-string compare
// and is not production auth; hosts that store hashes plug in BcryptVerifier
// without touching any view logic.
type CredentialVerifier interface {
	Verify(stored, supplied string) bool
}

// PlainVerifier does an exact plaintext comparison. Demo use only.
type PlainVerifier struct{}

// Verify reports whether the supplied password matches exactly.
func (PlainVerifier) Verify(stored, supplied string) bool {
	return stored != "" && stored == supplied
}

// BcryptVerifier treats the stored credential as a bcrypt hash.
type BcryptVerifier struct{}

// Verify compares the supplied password against the stored hash.
func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// AuthService implements the session state machine: Anonymous to
// Authenticated on a credential or one-time-code match, back on logout. The
// session is a persisted reference to a User record; there is no token and
// no expiry.
type AuthService struct {
	store     *store.Store
	verifier  CredentialVerifier
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *metrics.Metrics
	cfg       config.AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(st *store.Store, verifier CredentialVerifier, validate *validator.Validate, logger *zap.Logger, m *metrics.Metrics, cfg config.AuthConfig) *AuthService {
	if verifier == nil {
		verifier = PlainVerifier{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OTPLength <= 0 {
		cfg.OTPLength = 6
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.MinPhoneLen <= 0 {
		cfg.MinPhoneLen = 7
	}
	return &AuthService{store: st, verifier: verifier, validator: validate, logger: logger, metrics: m, cfg: cfg, now: time.Now}
}

// Current returns the actor for the persisted session, or the guest actor.
func (s *AuthService) Current() access.Actor {
	u := s.store.CurrentUser()
	if u == nil {
		return access.Guest
	}
	return access.Actor{UserID: u.ID, Role: u.Role}
}

// Login authenticates by email and password and persists the session.
func (s *AuthService) Login(req models.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "enter email & password")
	}

	var matched *models.User
	s.store.View(func(doc *models.Document) {
		if u := doc.UserByEmail(req.Email); u != nil && s.verifier.Verify(u.Password, req.Password) {
			copied := *u
			matched = &copied
		}
	})
	if matched == nil {
		s.metrics.RecordLogin("password", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if err := s.store.Mutate(func(doc *models.Document) error {
		id := matched.ID
		doc.LoggedInID = &id
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("password", true)
	s.logger.Info("login", zap.String("user_id", matched.ID), zap.String("role", string(matched.Role)))
	return matched, nil
}

// RequestOTP generates a one-time code for the phone number and stores it in
// the single pending slot, overwriting any prior request. The code is
// returned to the caller because this demo flow has no delivery channel.
func (s *AuthService) RequestOTP(phone string) (*models.PendingOTP, error) {
	normalized := digitsOnly(phone)
	if len(normalized) < s.cfg.MinPhoneLen {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enter a valid phone")
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to generate code")
	}

	pending := &models.PendingOTP{
		Phone:   normalized,
		Code:    code,
		Expires: s.now().Add(s.cfg.OTPTTL).UnixMilli(),
	}
	if err := s.store.Mutate(func(doc *models.Document) error {
		doc.PendingOTP = pending
		return nil
	}); err != nil {
		return nil, err
	}

	copied := *pending
	return &copied, nil
}

// VerifyOTP checks the supplied code against the pending slot. Outcomes are
// distinct for no pending code, expired, and mismatch. On success the slot
// is cleared, a Student user is auto-provisioned when the phone matches no
// existing one, and the session is persisted.
func (s *AuthService) VerifyOTP(code string) (*models.User, error) {
	var pending *models.PendingOTP
	s.store.View(func(doc *models.Document) {
		if doc.PendingOTP != nil {
			copied := *doc.PendingOTP
			pending = &copied
		}
	})

	if pending == nil {
		s.metrics.RecordLogin("otp", false)
		return nil, appErrors.Clone(appErrors.ErrNoPendingCode, "")
	}
	if pending.ExpiredAt(s.now()) {
		s.metrics.RecordLogin("otp", false)
		if err := s.CancelOTP(); err != nil {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.ErrCodeExpired, "")
	}
	if strings.TrimSpace(code) != pending.Code {
		s.metrics.RecordLogin("otp", false)
		return nil, appErrors.Clone(appErrors.ErrCodeMismatch, "")
	}

	var logged models.User
	if err := s.store.Mutate(func(doc *models.Document) error {
		var user *models.User
		for i := range doc.Users {
			if digitsOnly(doc.Users[i].Phone) == pending.Phone {
				user = &doc.Users[i]
				break
			}
		}
		if user == nil {
			created := models.User{
				ID:    models.NewID("u"),
				Role:  models.RoleStudent,
				Name:  "Student " + lastDigits(pending.Phone, 4),
				Phone: pending.Phone,
			}
			if len(doc.Classes) > 0 {
				created.ClassID = doc.Classes[0].ID
			}
			doc.Users = append(doc.Users, created)
			user = &doc.Users[len(doc.Users)-1]
			s.logger.Info("auto-provisioned student", zap.String("user_id", created.ID))
		}
		id := user.ID
		doc.LoggedInID = &id
		doc.PendingOTP = nil
		logged = *user
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("otp", true)
	return &logged, nil
}

// CancelOTP clears the pending slot.
func (s *AuthService) CancelOTP() error {
	return s.store.Mutate(func(doc *models.Document) error {
		doc.PendingOTP = nil
		return nil
	})
}

// Logout transitions back to the anonymous state.
func (s *AuthService) Logout() error {
	return s.store.Mutate(func(doc *models.Document) error {
		doc.LoggedInID = nil
		return nil
	})
}

func (s *AuthService) generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.cfg.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.cfg.OTPLength, n), nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastDigits(phone string, n int) string {
	if len(phone) <= n {
		return phone
	}
	return phone[len(phone)-n:]
}
