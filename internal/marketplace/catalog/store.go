// Package catalog owns the marketplace directory (buyers, sellers), the
// product catalog and the selling requests.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/green-harvest/harvest-backend/internal/marketplace/events"
	"github.com/green-harvest/harvest-backend/internal/storage/kv"
	"github.com/rs/zerolog"
)

// Storage keys, one JSON array each
const (
	KeyBuyers   = "buyers"
	KeySellers  = "sellers"
	KeyProducts = "products"
	KeyRequests = "requests"
)

// UpdateResult reports what UpdateRequestStatus found
type UpdateResult struct {
	Found    bool
	Previous domain.Status
}

// Store keeps every collection in memory and rewrites all of them to the
// backend after each mutation.
type Store struct {
	mu sync.RWMutex

	kv        kv.Store
	fixtures  Fixtures
	newID     domain.IDGenerator
	now       func() time.Time
	publisher events.Publisher
	log       zerolog.Logger

	state state
}

type state struct {
	buyers   []domain.Buyer
	sellers  []domain.Seller
	products []domain.Product
	requests []domain.SellingRequest
}

type Option func(*Store)

func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithFixtures replaces the built-in seed data
func WithFixtures(f Fixtures) Option {
	return func(s *Store) { s.fixtures = f }
}

// Open loads all collections from the backend. A collection that is missing
// or unreadable starts from the fixtures instead.
func Open(ctx context.Context, backend kv.Store, opts ...Option) (*Store, error) {
	fixtures, err := DefaultFixtures()
	if err != nil {
		return nil, err
	}

	s := &Store{
		kv:        backend,
		fixtures:  fixtures,
		newID:     domain.NewID,
		now:       time.Now,
		publisher: events.Nop{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	seeded := false
	load := func(key string, dst interface{}, seed func()) error {
		ok, err := s.loadKey(ctx, key, dst)
		if err != nil {
			return err
		}
		if !ok {
			seed()
			seeded = true
		}
		return nil
	}

	var st state
	if err := load(KeyBuyers, &st.buyers, func() { st.buyers = cloneBuyers(s.fixtures.Buyers) }); err != nil {
		return nil, err
	}
	if err := load(KeySellers, &st.sellers, func() { st.sellers = cloneSellers(s.fixtures.Sellers) }); err != nil {
		return nil, err
	}
	if err := load(KeyProducts, &st.products, func() { st.products = append([]domain.Product(nil), s.fixtures.Products...) }); err != nil {
		return nil, err
	}
	if err := load(KeyRequests, &st.requests, func() { st.requests = append([]domain.SellingRequest(nil), s.fixtures.Requests...) }); err != nil {
		return nil, err
	}

	if seeded {
		if err := s.persist(ctx, st); err != nil {
			return nil, err
		}
	}
	s.state = st

	s.log.Info().
		Int("buyers", len(st.buyers)).
		Int("sellers", len(st.sellers)).
		Int("products", len(st.products)).
		Int("requests", len(st.requests)).
		Bool("seeded", seeded).
		Msg("catalog loaded")
	return s, nil
}

// loadKey decodes key into dst. ok is false when the key is missing or its
// content cannot be decoded.
func (s *Store) loadKey(ctx context.Context, key string, dst interface{}) (ok bool, err error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stored collection unreadable, falling back to seed data")
		return false, nil
	}
	return true, nil
}

func (s *Store) persist(ctx context.Context, st state) error {
	entries := make(map[string][]byte, 4)
	for key, v := range map[string]interface{}{
		KeyBuyers:   nonNil(st.buyers),
		KeySellers:  nonNil(st.sellers),
		KeyProducts: nonNil(st.products),
		KeyRequests: nonNil(st.requests),
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		entries[key] = data
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	return nil
}

// AddProduct assigns the product a fresh id and appends it to the catalog.
// Duplicates are not detected.
func (s *Store) AddProduct(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	p := s.newProduct(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.products = append(append([]domain.Product(nil), s.state.products...), p)
	if err := s.commit(ctx, next); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Store) newProduct(in domain.NewProduct) domain.Product {
	return domain.Product{
		ID:       s.newID(domain.PrefixProduct),
		Name:     in.Name,
		Price:    in.Price,
		Quantity: in.Quantity,
		Unit:     in.Unit,
		SellerID: in.SellerID,
	}
}

// CreateSellingRequest records a new pending request. The buyer and seller
// ids are taken on trust.
func (s *Store) CreateSellingRequest(ctx context.Context, in domain.NewSellingRequest) (domain.SellingRequest, error) {
	r := s.newRequest(in)

	s.mu.Lock()
	next := s.state
	next.requests = append(append([]domain.SellingRequest(nil), s.state.requests...), r)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.SellingRequest{}, err
	}

	s.publish(ctx, events.RequestEvent{Type: events.RequestCreated, Request: r, At: r.CreatedAt})
	return r, nil
}

// AddProductAndRequest adds a product and offers it in a new pending request
// in one write, so a failure leaves neither behind. in.Product is replaced by
// the new product.
func (s *Store) AddProductAndRequest(ctx context.Context, p domain.NewProduct, in domain.NewSellingRequest) (domain.SellingRequest, error) {
	product := s.newProduct(p)
	in.Product = product
	r := s.newRequest(in)

	s.mu.Lock()
	next := s.state
	next.products = append(append([]domain.Product(nil), s.state.products...), product)
	next.requests = append(append([]domain.SellingRequest(nil), s.state.requests...), r)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.SellingRequest{}, err
	}

	s.publish(ctx, events.RequestEvent{Type: events.RequestCreated, Request: r, At: r.CreatedAt})
	return r, nil
}

func (s *Store) newRequest(in domain.NewSellingRequest) domain.SellingRequest {
	return domain.SellingRequest{
		ID:                 s.newID(domain.PrefixRequest),
		Product:            in.Product,
		SellerID:           in.SellerID,
		BuyerID:            in.BuyerID,
		Status:             domain.StatusPending,
		TransportationCost: in.TransportationCost,
		CreatedAt:          s.now().UTC(),
	}
}

// commit persists next and makes it the current state. Must be called with
// s.mu held.
func (s *Store) commit(ctx context.Context, next state) error {
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// UpdateRequestStatus sets the status of the request with the given id.
// An unknown id changes nothing and is reported through Found. A request that
// is already accepted or rejected is overwritten as well; use Transition for
// the one-way lifecycle.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status domain.Status) (UpdateResult, error) {
	if !status.IsDecision() {
		return UpdateResult{}, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	_, res, event, err := s.setStatus(ctx, id, status)
	s.mu.Unlock()

	if event != nil {
		s.publish(ctx, *event)
	}
	return res, err
}

// Transition moves a pending request to accepted or rejected. It fails with
// domain.ErrRequestNotFound or domain.ErrRequestClosed instead of overwriting.
func (s *Store) Transition(ctx context.Context, id string, status domain.Status) (domain.SellingRequest, error) {
	if !status.IsDecision() {
		return domain.SellingRequest{}, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	r, event, err := s.transition(ctx, id, status)
	s.mu.Unlock()

	if event != nil {
		s.publish(ctx, *event)
	}
	return r, err
}

// transition must be called with s.mu held
func (s *Store) transition(ctx context.Context, id string, status domain.Status) (domain.SellingRequest, *events.RequestEvent, error) {
	idx := s.requestIndex(id)
	if idx < 0 {
		return domain.SellingRequest{}, nil, domain.ErrRequestNotFound
	}
	if !domain.CanTransition(s.state.requests[idx].Status, status) {
		return domain.SellingRequest{}, nil, domain.ErrRequestClosed
	}

	r, _, event, err := s.setStatus(ctx, id, status)
	return r, event, err
}

// setStatus must be called with s.mu held. The returned event is published by
// the caller once the lock is released.
func (s *Store) setStatus(ctx context.Context, id string, status domain.Status) (domain.SellingRequest, UpdateResult, *events.RequestEvent, error) {
	idx := s.requestIndex(id)
	if idx < 0 {
		return domain.SellingRequest{}, UpdateResult{}, nil, nil
	}

	next := s.state
	next.requests = append([]domain.SellingRequest(nil), s.state.requests...)
	prev := next.requests[idx].Status
	next.requests[idx].Status = status
	if err := s.commit(ctx, next); err != nil {
		return domain.SellingRequest{}, UpdateResult{}, nil, err
	}

	s.log.Info().
		Str("request_id", id).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("request status changed")

	r := next.requests[idx]
	event := &events.RequestEvent{
		Type:     events.RequestStatusChanged,
		Request:  r,
		Previous: prev,
		At:       s.now().UTC(),
	}
	return r, UpdateResult{Found: true, Previous: prev}, event, nil
}

func (s *Store) requestIndex(id string) int {
	for i := range s.state.requests {
		if s.state.requests[i].ID == id {
			return i
		}
	}
	return -1
}

// AddBuyer inserts b into the directory, replacing any buyer with the same id
func (s *Store) AddBuyer(ctx context.Context, b domain.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.buyers = cloneBuyers(s.state.buyers)
	replaced := false
	for i := range next.buyers {
		if next.buyers[i].ID == b.ID {
			next.buyers[i] = b.Clone()
			replaced = true
		}
	}
	if !replaced {
		next.buyers = append(next.buyers, b.Clone())
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	return nil
}

// AddSeller inserts sl into the directory, replacing any seller with the same id
func (s *Store) AddSeller(ctx context.Context, sl domain.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.sellers = cloneSellers(s.state.sellers)
	replaced := false
	for i := range next.sellers {
		if next.sellers[i].ID == sl.ID {
			next.sellers[i] = sl.Clone()
			replaced = true
		}
	}
	if !replaced {
		next.sellers = append(next.sellers, sl.Clone())
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	return nil
}

// Reset discards every collection and starts over from the fixtures
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := state{
		buyers:   cloneBuyers(s.fixtures.Buyers),
		sellers:  cloneSellers(s.fixtures.Sellers),
		products: append([]domain.Product(nil), s.fixtures.Products...),
		requests: append([]domain.SellingRequest(nil), s.fixtures.Requests...),
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info().Msg("catalog reset to fixtures")
	return nil
}

func (s *Store) publish(ctx context.Context, e events.RequestEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("request_id", e.Request.ID).Msg("failed to publish request event")
	}
}

func cloneBuyers(in []domain.Buyer) []domain.Buyer {
	if in == nil {
		return nil
	}
	out := make([]domain.Buyer, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}

func cloneSellers(in []domain.Seller) []domain.Seller {
	if in == nil {
		return nil
	}
	out := make([]domain.Seller, len(in))
	for i, sl := range in {
		out[i] = sl.Clone()
	}
	return out
}

// nonNil keeps empty collections encoded as [] rather than null
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
