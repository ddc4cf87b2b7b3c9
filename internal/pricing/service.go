package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

type offerStore interface {
	ActiveOffers(ctx context.Context, productID uuid.UUID) ([]Offer, error)
	CheapestOffer(ctx context.Context, productID uuid.UUID) (*Offer, error)
	OfferFor(ctx context.Context, supplierID, productID uuid.UUID) (*Offer, error)
}

// Service resolves supplier prices. It never writes.
type Service interface {
	Cheapest(ctx context.Context, productID uuid.UUID) (*Offer, error)
	SuppliersForProduct(ctx context.Context, productID uuid.UUID) ([]Offer, error)
	PriceFor(ctx context.Context, supplierID, productID uuid.UUID) (*Offer, error)
}

type service struct {
	store offerStore
}

func NewService(store offerStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{store: store}, nil
}

func (s *service) Cheapest(ctx context.Context, productID uuid.UUID) (*Offer, error) {
	offer, err := s.store.CheapestOffer(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve cheapest supplier")
	}
	return offer, nil
}

func (s *service) SuppliersForProduct(ctx context.Context, productID uuid.UUID) ([]Offer, error) {
	offers, err := s.store.ActiveOffers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supplier offers")
	}
	if offers == nil {
		offers = []Offer{}
	}
	return MarkCheapest(offers), nil
}

func (s *service) PriceFor(ctx context.Context, supplierID, productID uuid.UUID) (*Offer, error) {
	offer, err := s.store.OfferFor(ctx, supplierID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier price")
	}
	return offer, nil
}
