package member

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pinehollow/club-booking-backend/internal/auth"
	"github.com/pinehollow/club-booking-backend/internal/pkg/storage"
)

type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Tier        string
	DateOfBirth *time.Time
}

type ConsentRequest struct {
	MemberEmail  string
	GuardianName string
	Waiver       io.Reader // signed waiver image; may be nil
}

// Service defines business logic related to members.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, error)
	Login(ctx context.Context, email, password string) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)

	GuestPassBalance(ctx context.Context, email string) (*GuestPassBalance, error)

	// HasConsent reports whether a guardian consent is already on file.
	HasConsent(ctx context.Context, email string) (bool, error)
	RecordConsent(ctx context.Context, req ConsentRequest) (*GuardianConsent, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	files  storage.Storage
	waiver *storage.WaiverProcessor

	minPasswordLength int
}

// NewService creates a new member Service.
func NewService(repo Repository, hasher auth.PasswordHasher, files storage.Storage) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		files:             files,
		waiver:            storage.NewWaiverProcessor(),
		minPasswordLength: 8,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	cleanEmail := normalizeEmail(req.Email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	if len(req.Password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	tier := req.Tier
	if tier == "" {
		tier = "standard"
	}

	m := &Member{
		Email:        cleanEmail,
		PasswordHash: hash,
		Tier:         tier,
		DateOfBirth:  req.DateOfBirth,
		IsActive:     true,
	}
	if req.DisplayName != "" {
		m.DisplayName = &req.DisplayName
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Member, error) {
	m, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(m.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !m.IsActive {
		return nil, ErrInactiveMember
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, m.ID, now); err != nil {
		return nil, err
	}
	m.LastLoginAt = &now

	return m, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *service) GuestPassBalance(ctx context.Context, email string) (*GuestPassBalance, error) {
	return s.repo.GetGuestPassBalance(ctx, normalizeEmail(email))
}

func (s *service) HasConsent(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetConsent(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) RecordConsent(ctx context.Context, req ConsentRequest) (*GuardianConsent, error) {
	c := &GuardianConsent{
		MemberEmail:  normalizeEmail(req.MemberEmail),
		GuardianName: req.GuardianName,
	}

	if req.Waiver != nil {
		normalized, err := s.waiver.Normalize(req.Waiver)
		if err != nil {
			return nil, ErrInvalidWaiver
		}
		path := fmt.Sprintf("consents/%s/%s.jpg", c.MemberEmail, uuid.NewString())
		if err := s.files.Save(ctx, path, normalized); err != nil {
			return nil, fmt.Errorf("save waiver failed: %w", err)
		}
		c.WaiverPath = path
	}

	if err := s.repo.CreateConsent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
