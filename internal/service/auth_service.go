package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"accentclash/internal/models"
	"accentclash/internal/repository"
	"accentclash/internal/security"
	"accentclash/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLearnerNotFound    = errors.New("learner not found")
)

// AuthService handles learner registration, login and token validation
type AuthService struct {
	learnerRepo *repository.LearnerRepository
	tokens      *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(learnerRepo *repository.LearnerRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{
		learnerRepo: learnerRepo,
		tokens:      tokens,
	}
}

// Register creates a learner account and returns it with a bearer token
func (s *AuthService) Register(ctx context.Context, email, password, name, nativeLang, targetLang, cefrLevel string) (*models.Learner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", errors.New("invalid email address")
	}
	if len(password) < 8 {
		return nil, "", errors.New("password must be at least 8 characters")
	}
	if cefrLevel == "" {
		cefrLevel = "A1"
	}
	if !models.ValidCEFRLevel(cefrLevel) {
		return nil, "", fmt.Errorf("unknown CEFR level: %s", cefrLevel)
	}

	if _, err := s.learnerRepo.GetLearnerByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	learner, err := s.learnerRepo.CreateLearner(ctx, email, hash, name, nativeLang, targetLang, cefrLevel)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(learner.ID)
	if err != nil {
		return nil, "", err
	}
	return learner, token, nil
}

// Login verifies credentials and returns the learner with a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Learner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	learner, err := s.learnerRepo.GetLearnerByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !utils.CheckPassword(password, learner.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(learner.ID)
	if err != nil {
		return nil, "", err
	}
	return learner, token, nil
}

// UpdateLevel updates the learner's self-reported CEFR proficiency tier
func (s *AuthService) UpdateLevel(ctx context.Context, learnerID int64, cefrLevel string) (*models.Learner, error) {
	if !models.ValidCEFRLevel(cefrLevel) {
		return nil, fmt.Errorf("unknown CEFR level: %s", cefrLevel)
	}
	if err := s.learnerRepo.UpdateCEFRLevel(ctx, learnerID, cefrLevel); err != nil {
		return nil, err
	}
	return s.learnerRepo.GetLearnerByID(ctx, learnerID)
}

// ValidateToken resolves a bearer token to the learner it was issued for
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.Learner, error) {
	learnerID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	learner, err := s.learnerRepo.GetLearnerByID(ctx, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLearnerNotFound
	}
	return learner, err
}
