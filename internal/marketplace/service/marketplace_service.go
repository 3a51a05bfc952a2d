package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/green-harvest/harvest-backend/internal/marketplace/catalog"
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/green-harvest/harvest-backend/internal/marketplace/events"
	"github.com/green-harvest/harvest-backend/internal/marketplace/identity"
	"github.com/green-harvest/harvest-backend/internal/storage/kv"
	"github.com/rs/zerolog"
)

// MarketplaceService is what the dashboards and forms talk to: it checks
// form input and the session's role before touching the stores.
type MarketplaceService struct {
	kv         kv.Store
	catalog    *catalog.Store
	subscriber events.Subscriber
	sessionTTL time.Duration
	newID      domain.IDGenerator
	log        zerolog.Logger
}

// Options configures a MarketplaceService
type Options struct {
	SessionTTL  time.Duration
	Subscriber  events.Subscriber
	IDGenerator domain.IDGenerator
	Logger      zerolog.Logger
}

// NewMarketplaceService creates a new MarketplaceService
func NewMarketplaceService(backend kv.Store, cat *catalog.Store, opts Options) *MarketplaceService {
	s := &MarketplaceService{
		kv:         backend,
		catalog:    cat,
		subscriber: opts.Subscriber,
		sessionTTL: opts.SessionTTL,
		newID:      opts.IDGenerator,
		log:        opts.Logger,
	}
	if s.subscriber == nil {
		s.subscriber = events.Nop{}
	}
	if s.newID == nil {
		s.newID = domain.NewID
	}
	return s
}

func (s *MarketplaceService) identity(sessionID string) *identity.Store {
	return identity.NewStore(s.kv, identity.SessionKey(sessionID),
		identity.WithTTL(s.sessionTTL),
		identity.WithIDGenerator(s.newID),
		identity.WithLogger(s.log),
	)
}

// CurrentUser returns the session's identity or domain.ErrNoIdentity
func (s *MarketplaceService) CurrentUser(ctx context.Context, sessionID string) (domain.Profile, error) {
	p, found, err := s.identity(sessionID).Current(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNoIdentity
	}
	return p, nil
}

// Login stores a base identity for the session. Role-specific details are
// collected afterwards by RegisterBuyer or RegisterSeller.
func (s *MarketplaceService) Login(ctx context.Context, sessionID string, form LoginForm) (domain.User, error) {
	if err := form.Validate(); err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:     s.newID(domain.PrefixUser),
		Name:   strings.TrimSpace(form.Name),
		Mobile: form.Mobile,
		Email:  strings.TrimSpace(form.Email),
		Role:   form.Role,
	}
	if err := s.identity(sessionID).Set(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Logout forgets the session's identity
func (s *MarketplaceService) Logout(ctx context.Context, sessionID string) error {
	return s.identity(sessionID).Clear(ctx)
}

// RegisterBuyer completes the session's base identity into a buyer and lists
// the shop in the buyer directory.
func (s *MarketplaceService) RegisterBuyer(ctx context.Context, sessionID string, form BuyerForm) (*domain.Buyer, error) {
	ids := s.identity(sessionID)
	base, err := s.pendingUser(ctx, ids, domain.RoleBuyer)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	p, err := ids.UpgradeToRole(ctx, base, form.details())
	if err != nil {
		return nil, err
	}
	buyer := p.(*domain.Buyer)
	if err := s.catalog.AddBuyer(ctx, *buyer); err != nil {
		s.restoreIdentity(ctx, ids, base)
		return nil, err
	}
	return buyer, nil
}

// RegisterSeller completes the session's base identity into a seller and
// lists the farm in the seller directory.
func (s *MarketplaceService) RegisterSeller(ctx context.Context, sessionID string, form SellerForm) (*domain.Seller, error) {
	ids := s.identity(sessionID)
	base, err := s.pendingUser(ctx, ids, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	p, err := ids.UpgradeToRole(ctx, base, form.details())
	if err != nil {
		return nil, err
	}
	seller := p.(*domain.Seller)
	if err := s.catalog.AddSeller(ctx, *seller); err != nil {
		s.restoreIdentity(ctx, ids, base)
		return nil, err
	}
	return seller, nil
}

// restoreIdentity puts the base identity back after the directory write
// failed, so the session can retry the registration.
func (s *MarketplaceService) restoreIdentity(ctx context.Context, ids *identity.Store, base domain.User) {
	if err := ids.Set(ctx, base); err != nil {
		s.log.Error().Err(err).Str("user_id", base.ID).Msg("failed to restore identity after registration error")
	}
}

// pendingUser returns the session's base identity if it chose role and has
// not registered yet
func (s *MarketplaceService) pendingUser(ctx context.Context, ids *identity.Store, role domain.Role) (domain.User, error) {
	p, found, err := ids.Current(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, domain.ErrNoIdentity
	}

	switch p := p.(type) {
	case domain.User:
		if p.Role != role {
			return domain.User{}, domain.ErrWrongRole
		}
		return p, nil
	case *domain.Buyer, *domain.Seller:
		return domain.User{}, domain.ErrAlreadyRegistered
	default:
		return domain.User{}, domain.ErrNoIdentity
	}
}

// CreateRequest adds the form's product to the seller's catalog and offers it
// to the chosen buyer as a new pending request.
func (s *MarketplaceService) CreateRequest(ctx context.Context, sessionID string, form RequestForm) (domain.SellingRequest, error) {
	seller, err := s.currentSeller(ctx, sessionID)
	if err != nil {
		return domain.SellingRequest{}, err
	}

	if err := form.Validate(); err != nil {
		return domain.SellingRequest{}, err
	}
	if _, ok := s.catalog.BuyerByID(form.BuyerID); !ok {
		return domain.SellingRequest{}, &domain.ValidationError{Fields: map[string]string{
			"buyerId": "Please select a buyer",
		}}
	}

	req, err := s.catalog.AddProductAndRequest(ctx, domain.NewProduct{
		Name:     strings.TrimSpace(form.ProductName),
		Price:    *form.Price,
		Quantity: *form.Quantity,
		Unit:     form.Unit,
		SellerID: seller.ID,
	}, domain.NewSellingRequest{
		SellerID:           seller.ID,
		BuyerID:            form.BuyerID,
		TransportationCost: *form.TransportationCost,
	})
	if err != nil {
		return domain.SellingRequest{}, err
	}

	s.log.Info().
		Str("request_id", req.ID).
		Str("seller_id", req.SellerID).
		Str("buyer_id", req.BuyerID).
		Msg("selling request created")
	return req, nil
}

// Decide accepts or rejects one of the current buyer's pending requests
func (s *MarketplaceService) Decide(ctx context.Context, sessionID, requestID string, status domain.Status) (domain.SellingRequest, error) {
	if !status.IsDecision() {
		return domain.SellingRequest{}, domain.ErrInvalidStatus
	}

	buyer, err := s.currentBuyer(ctx, sessionID)
	if err != nil {
		return domain.SellingRequest{}, err
	}

	req, ok := s.catalog.RequestByID(requestID)
	if !ok {
		return domain.SellingRequest{}, domain.ErrRequestNotFound
	}
	if req.BuyerID != buyer.ID {
		return domain.SellingRequest{}, domain.ErrNotRequestBuyer
	}

	return s.catalog.Transition(ctx, requestID, status)
}

func (s *MarketplaceService) currentBuyer(ctx context.Context, sessionID string) (*domain.Buyer, error) {
	p, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	b, ok := p.(*domain.Buyer)
	if !ok {
		return nil, domain.ErrWrongRole
	}
	return b, nil
}

func (s *MarketplaceService) currentSeller(ctx context.Context, sessionID string) (*domain.Seller, error) {
	p, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sl, ok := p.(*domain.Seller)
	if !ok {
		return nil, domain.ErrWrongRole
	}
	return sl, nil
}

// Buyers lists the shops a seller can send requests to
func (s *MarketplaceService) Buyers() []domain.Buyer {
	return s.catalog.Buyers()
}

func (s *MarketplaceService) Buyer(id string) (domain.Buyer, bool) {
	return s.catalog.BuyerByID(id)
}

func (s *MarketplaceService) Seller(id string) (domain.Seller, bool) {
	return s.catalog.SellerByID(id)
}

func (s *MarketplaceService) SellerProducts(sellerID string) []domain.Product {
	return s.catalog.SellerProducts(sellerID)
}

// Watch streams request events that involve the session's registered user
func (s *MarketplaceService) Watch(ctx context.Context, sessionID string) (<-chan events.RequestEvent, error) {
	p, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := p.(domain.User); ok {
		return nil, domain.ErrWrongRole
	}
	userID := p.Base().ID

	all, err := s.subscriber.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan events.RequestEvent)
	go func() {
		defer close(out)
		for e := range all {
			if !e.Concerns(userID) {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// IsClientError reports whether err was caused by the caller's input or state
func IsClientError(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, domain.ErrNoIdentity) ||
		errors.Is(err, domain.ErrWrongRole) ||
		errors.Is(err, domain.ErrAlreadyRegistered) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrRequestNotFound) ||
		errors.Is(err, domain.ErrRequestClosed) ||
		errors.Is(err, domain.ErrNotRequestBuyer)
}
