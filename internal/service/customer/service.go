package customer

import (
	"context"
	"errors"
	"log"

	model "github.com/jagmag/crm-backend/internal/model/customer"
)

var ErrProfileKeyRequired = errors.New("profile key is required")

// Store is the read surface this service needs.
type Store interface {
	GetCustomerProfile(ctx context.Context, profileKey string) (*model.Profile, error)
	ListOrdersByProfile(ctx context.Context, profileKey string) ([]model.Order, error)
}

// View is a customer detail: the profile (nil when unknown) plus cached
// orders, newest first.
type View struct {
	Profile *model.Profile `json:"profile"`
	Orders  []model.Order  `json:"orders"`
}

// Service assembles customer detail views.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get loads a customer's profile and order history. A missing profile
// is not an error (the caller renders it as unknown); a failed order
// lookup is non-fatal and yields an empty list.
func (s *Service) Get(ctx context.Context, profileKey string) (View, error) {
	if profileKey == "" {
		return View{}, ErrProfileKeyRequired
	}

	profile, err := s.store.GetCustomerProfile(ctx, profileKey)
	if err != nil {
		return View{}, err
	}

	orders, err := s.store.ListOrdersByProfile(ctx, profileKey)
	if err != nil {
		log.Printf("[customer] order lookup failed (non-fatal): %v", err)
		orders = nil
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return View{Profile: profile, Orders: orders}, nil
}
