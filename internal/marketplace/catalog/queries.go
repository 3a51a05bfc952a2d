package catalog

import "github.com/green-harvest/harvest-backend/internal/marketplace/domain"

// The query methods never fail: a miss is an empty slice or found == false.

func (s *Store) Buyers() []domain.Buyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(cloneBuyers(s.state.buyers))
}

func (s *Store) Sellers() []domain.Seller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(cloneSellers(s.state.sellers))
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.state.products...)
}

func (s *Store) Requests() []domain.SellingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SellingRequest{}, s.state.requests...)
}

func (s *Store) SellerProducts(sellerID string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Product{}
	for _, p := range s.state.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) SellerRequests(sellerID string) []domain.SellingRequest {
	return s.filterRequests(func(r domain.SellingRequest) bool { return r.SellerID == sellerID })
}

func (s *Store) BuyerRequests(buyerID string) []domain.SellingRequest {
	return s.filterRequests(func(r domain.SellingRequest) bool { return r.BuyerID == buyerID })
}

func (s *Store) RequestByID(id string) (domain.SellingRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.state.requests {
		if r.ID == id {
			return r, true
		}
	}
	return domain.SellingRequest{}, false
}

func (s *Store) BuyerByID(id string) (domain.Buyer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.state.buyers {
		if b.ID == id {
			return b.Clone(), true
		}
	}
	return domain.Buyer{}, false
}

func (s *Store) SellerByID(id string) (domain.Seller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sl := range s.state.sellers {
		if sl.ID == id {
			return sl.Clone(), true
		}
	}
	return domain.Seller{}, false
}

// Snapshot copies every collection, e.g. for export
func (s *Store) Snapshot() Fixtures {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Fixtures{
		Buyers:   nonNil(cloneBuyers(s.state.buyers)),
		Sellers:  nonNil(cloneSellers(s.state.sellers)),
		Products: append([]domain.Product{}, s.state.products...),
		Requests: append([]domain.SellingRequest{}, s.state.requests...),
	}
}

func (s *Store) filterRequests(keep func(domain.SellingRequest) bool) []domain.SellingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.SellingRequest{}
	for _, r := range s.state.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
