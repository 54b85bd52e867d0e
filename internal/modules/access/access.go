package access

import (
	"crypto/subtle"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Mode is the privilege granted by a successful authentication.
type Mode string

const (
	ModeTenant   Mode = "tenant"
	ModeOperator Mode = "operator"
)

func (m Mode) Valid() bool {
	return m == ModeTenant || m == ModeOperator
}

// PasswordSource supplies the current tenant password.
type PasswordSource interface {
	TenantPassword() string
}

// Service classifies credentials. It keeps no per-attempt state.
type Service struct {
	passwords      PasswordSource
	operatorSecret []byte
	operatorHashed bool
}

// NewService builds the classifier. operatorSecret may be plain text or a
// bcrypt hash; an empty secret disables operator mode.
func NewService(passwords PasswordSource, operatorSecret string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{passwords: passwords}
	secret := strings.TrimSpace(operatorSecret)
	switch {
	case secret == "":
		logger.Warn("MASTER_PASSWORD is not set, operator mode is disabled")
	case isBcryptHash(secret):
		s.operatorSecret = []byte(secret)
		s.operatorHashed = true
	default:
		s.operatorSecret = []byte(secret)
	}
	return s
}

// OperatorEnabled reports whether an operator secret is configured.
func (s *Service) OperatorEnabled() bool {
	return len(s.operatorSecret) > 0
}

// Authenticate returns the mode a credential unlocks. Empty credentials are
// rejected without comparison and the tenant password is checked first.
func (s *Service) Authenticate(credential string) (Mode, bool) {
	if credential == "" {
		return "", false
	}
	if tenant := s.passwords.TenantPassword(); tenant != "" && equal(credential, tenant) {
		return ModeTenant, true
	}
	if s.matchesOperator(credential) {
		return ModeOperator, true
	}
	return "", false
}

func (s *Service) matchesOperator(credential string) bool {
	if !s.OperatorEnabled() {
		return false
	}
	if s.operatorHashed {
		return bcrypt.CompareHashAndPassword(s.operatorSecret, []byte(credential)) == nil
	}
	return subtle.ConstantTimeCompare(s.operatorSecret, []byte(credential)) == 1
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isBcryptHash(secret string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(secret, prefix) {
			_, err := bcrypt.Cost([]byte(secret))
			return err == nil
		}
	}
	return false
}
