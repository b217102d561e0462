package resource

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name      string
	Type      string
	Capacity  int
	OpenTime  string
	CloseTime string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	ListClosures(ctx context.Context, date string) ([]*Closure, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	validType := false
	for _, t := range ValidTypes {
		if Type(req.Type) == t {
			validType = true
			break
		}
	}
	if !validType {
		return nil, ErrInvalidType
	}

	capacity := req.Capacity
	if capacity < 1 {
		capacity = 1
	}

	openTime := req.OpenTime
	if openTime == "" {
		openTime = "06:00"
	}
	closeTime := req.CloseTime
	if closeTime == "" {
		closeTime = "22:00"
	}

	res := &Resource{
		Name:      req.Name,
		Type:      Type(req.Type),
		Capacity:  capacity,
		OpenTime:  openTime,
		CloseTime: closeTime,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListClosures(ctx context.Context, date string) ([]*Closure, error) {
	return s.repo.ListClosures(ctx, date)
}
