package accounts

import (
	"context"
	"errors"
	"strings"

	"carbon-exchange/internal/application/emails"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service holds DB and mailer for account operations.
type Service struct {
	DB          *gorm.DB
	EmailSender emails.Sender
}

type CreateAccountInput struct {
	Address     string `json:"address"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionAccount is the object stored in session and returned by /me.
type SessionAccount struct {
	AccountID   string `json:"account_id"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AccountFinder abstracts account lookup by email+password (GORM in production, doubles in tests).
type AccountFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.Account, error)
}

// GormAccountFinder implements AccountFinder using GORM and bcrypt.
type GormAccountFinder struct{ DB *gorm.DB }

func (g *GormAccountFinder) FindByEmailAndPassword(email, password string) (*domain.Account, error) {
	return LoginAccount(g.DB, LoginInput{Email: email, Password: password})
}

// CreateAccount registers an account bound to one ledger address. Returns the created model (caller never sees password_hash).
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	address, ok := validation.ParseAddress(in.Address)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, domain.ErrInvalidPassword
	}
	name := strings.Join(strings.Fields(in.DisplayName), " ")
	if !validation.IsValidDisplayName(name) {
		return nil, domain.ErrInvalidDisplayName
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ? OR address = ?", email, address).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	a := &domain.Account{
		Address:      address,
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}

	if s.EmailSender != nil {
		if err := s.EmailSender.SendWelcome(ctx, a.Email, a.DisplayName); err != nil {
			log.Warn().Err(err).Str("account_id", a.AccountID.String()).Msg("welcome email failed")
		}
	}
	return a, nil
}

// ViewAccount loads the account behind a session.
func (s *Service) ViewAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	var a domain.Account
	if err := s.DB.WithContext(ctx).Where("account_id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// LoginAccount finds an account by email and verifies the password.
func LoginAccount(db *gorm.DB, input LoginInput) (*domain.Account, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrEmailPasswordRequired
	}
	var a domain.Account
	if err := db.Where("email = ?", strings.TrimSpace(strings.ToLower(input.Email))).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIncorrectPassword
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrIncorrectPassword
	}
	return &a, nil
}

// VerifySession validates the session user and returns the shape for /me.
func VerifySession(sessionUser interface{}) (*SessionAccount, error) {
	if sessionUser == nil {
		return nil, domain.ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	accountID, _ := m["account_id"].(string)
	address, _ := m["address"].(string)
	if accountID == "" || address == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return &SessionAccount{
		AccountID:   accountID,
		Address:     address,
		Email:       str(m["email"]),
		DisplayName: str(m["display_name"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
