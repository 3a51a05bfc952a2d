package service

import (
	"context"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/shopspring/decimal"
)

// Contact is how the other party of a request can be reached
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// RequestView is a request as shown on a dashboard
type RequestView struct {
	domain.SellingRequest
	Counterparty *Contact        `json:"counterparty,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

// Dashboard groups the session user's requests by status
type Dashboard struct {
	Profile  domain.Profile   `json:"profile"`
	Pending  []RequestView    `json:"pending"`
	Accepted []RequestView    `json:"accepted"`
	Rejected []RequestView    `json:"rejected"`
	Products []domain.Product `json:"products,omitempty"`
}

// Dashboard builds the buyer or seller dashboard of the session user
func (s *MarketplaceService) Dashboard(ctx context.Context, sessionID string) (*Dashboard, error) {
	p, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Profile:  p,
		Pending:  []RequestView{},
		Accepted: []RequestView{},
		Rejected: []RequestView{},
	}

	var requests []domain.SellingRequest
	var counterparty func(domain.SellingRequest) *Contact

	switch p := p.(type) {
	case *domain.Buyer:
		requests = s.catalog.BuyerRequests(p.ID)
		counterparty = func(r domain.SellingRequest) *Contact {
			sl, ok := s.catalog.SellerByID(r.SellerID)
			if !ok {
				return nil
			}
			return contactOf(sl.User)
		}
	case *domain.Seller:
		requests = s.catalog.SellerRequests(p.ID)
		d.Products = s.catalog.SellerProducts(p.ID)
		counterparty = func(r domain.SellingRequest) *Contact {
			b, ok := s.catalog.BuyerByID(r.BuyerID)
			if !ok {
				return nil
			}
			return contactOf(b.User)
		}
	default:
		return nil, domain.ErrWrongRole
	}

	for _, r := range requests {
		v := RequestView{SellingRequest: r, Counterparty: counterparty(r), Total: r.Total()}
		switch r.Status {
		case domain.StatusAccepted:
			d.Accepted = append(d.Accepted, v)
		case domain.StatusRejected:
			d.Rejected = append(d.Rejected, v)
		default:
			d.Pending = append(d.Pending, v)
		}
	}
	return d, nil
}

func contactOf(u domain.User) *Contact {
	return &Contact{ID: u.ID, Name: u.Name, Mobile: u.Mobile, Email: u.Email}
}
