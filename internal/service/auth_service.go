package service

import (
	"context"
	"errors"
	"log"

	"bazario/config"
	"bazario/internal/auth"
	"bazario/internal/domain"
	"bazario/internal/models"
	"bazario/internal/presence"
	"bazario/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	otp      *presence.OTPStore
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, otp *presence.OTPStore) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, otp: otp}
}

// Register creates the account and issues a verification OTP. Delivery is an
// external concern; the code is logged until an email sender is wired.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*models.User, error) {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		KYCStatus:    domain.KYCPending,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, err
	}
	if s.otp != nil {
		code, err := s.otp.Issue(ctx, email)
		if err != nil {
			log.Printf("[Auth] otp issue for %s: %v", email, err)
		} else {
			log.Printf("[Auth] verification code for %s: %s", email, code)
		}
	}
	return u, nil
}

// VerifyEmail consumes the OTP and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if err := s.otp.Verify(ctx, email, code); err != nil {
		return err
	}
	return s.userRepo.MarkEmailVerified(u.ID)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.tokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return s.tokens(u)
}

func (s *AuthService) tokens(u *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
