package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/green-harvest/harvest-backend/internal/marketplace/catalog"
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/green-harvest/harvest-backend/internal/marketplace/events"
	"github.com/green-harvest/harvest-backend/internal/storage/kv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

type testEnv struct {
	svc     *MarketplaceService
	catalog *catalog.Store
	mr      *miniredis.Miniredis
	client  *redis.Client
	writes  *failingWrites
}

// failingWrites fails every catalog write while err is set. Single-key writes
// such as the session identity go through untouched.
type failingWrites struct {
	kv.Store
	err error
}

func (f *failingWrites) SetMany(ctx context.Context, entries map[string][]byte) error {
	if f.err != nil {
		return f.err
	}
	return f.Store.SetMany(ctx, entries)
}

func setupService(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backend := &failingWrites{Store: kv.NewRedisStore(client, "")}
	bus := events.NewRedisBus(client, "", zerolog.Nop())

	cat, err := catalog.Open(context.Background(), backend, catalog.WithPublisher(bus))
	require.NoError(t, err)

	svc := NewMarketplaceService(backend, cat, Options{
		SessionTTL: time.Hour,
		Subscriber: bus,
	})
	return &testEnv{svc: svc, catalog: cat, mr: mr, client: client, writes: backend}
}

func (e *testEnv) registerSeller(t *testing.T, session string) *domain.Seller {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.Login(ctx, session, LoginForm{Name: "Asha Patel", Mobile: "9876543210", Email: "asha@example.com", Role: domain.RoleSeller})
	require.NoError(t, err)
	seller, err := e.svc.RegisterSeller(ctx, session, SellerForm{Address: "12 Orchard Lane", Crops: []string{"Mangoes"}, HarvestSeason: domain.SeasonSummer})
	require.NoError(t, err)
	return seller
}

func (e *testEnv) registerBuyer(t *testing.T, session string) *domain.Buyer {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.Login(ctx, session, LoginForm{Name: "Ravi Stores", Mobile: "9123456780", Email: "ravi@example.com", Role: domain.RoleBuyer})
	require.NoError(t, err)
	buyer, err := e.svc.RegisterBuyer(ctx, session, BuyerForm{ShopName: "Ravi Stores", Location: "5 Bazaar Road", OpeningTime: "07:00", ClosingTime: "21:00", Holidays: []string{"Tuesday"}})
	require.NoError(t, err)
	return buyer
}

func validRequest(buyerID string) RequestForm {
	return RequestForm{
		ProductName:        "Tomatoes",
		Price:              float(20),
		Quantity:           float(50),
		Unit:               "kg",
		BuyerID:            buyerID,
		TransportationCost: float(100),
	}
}

func TestLogin(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	t.Run("stores a base identity", func(t *testing.T) {
		u, err := env.svc.Login(ctx, "tab-1", LoginForm{Name: " Asha ", Mobile: "9876543210", Email: "asha@example.com", Role: domain.RoleSeller})
		require.NoError(t, err)
		assert.Equal(t, "Asha", u.Name)
		assert.Equal(t, domain.RoleSeller, u.Role)
		assert.NotEmpty(t, u.ID)

		p, err := env.svc.CurrentUser(ctx, "tab-1")
		require.NoError(t, err)
		assert.Equal(t, u, p)
		assert.Equal(t, time.Hour, env.mr.TTL("harvest:session:tab-1:user"))
	})

	t.Run("sessions are independent", func(t *testing.T) {
		_, err := env.svc.CurrentUser(ctx, "tab-2")
		assert.ErrorIs(t, err, domain.ErrNoIdentity)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "tab-3", LoginForm{Mobile: "12345", Email: "nope", Role: "admin"})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Name is required", verr.Fields["name"])
		assert.Equal(t, "Please enter a valid 10-digit mobile number", verr.Fields["mobile"])
		assert.Equal(t, "Please enter a valid email address", verr.Fields["email"])
		assert.Contains(t, verr.Fields, "role")

		_, err = env.svc.CurrentUser(ctx, "tab-3")
		assert.ErrorIs(t, err, domain.ErrNoIdentity)
	})

	t.Run("logout", func(t *testing.T) {
		require.NoError(t, env.svc.Logout(ctx, "tab-1"))
		_, err := env.svc.CurrentUser(ctx, "tab-1")
		assert.ErrorIs(t, err, domain.ErrNoIdentity)
	})
}

func TestRegister(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	t.Run("buyer joins the directory", func(t *testing.T) {
		buyer := env.registerBuyer(t, "shop")
		assert.Equal(t, domain.RoleBuyer, buyer.Role)
		assert.Equal(t, "Ravi Stores", buyer.Name)

		listed, ok := env.svc.Buyer(buyer.ID)
		require.True(t, ok)
		assert.Equal(t, "5 Bazaar Road", listed.Location)
		assert.Len(t, env.svc.Buyers(), 3)
	})

	t.Run("role and id are fixed once registered", func(t *testing.T) {
		p, err := env.svc.CurrentUser(ctx, "shop")
		require.NoError(t, err)
		id := p.Base().ID

		_, err = env.svc.RegisterBuyer(ctx, "shop", BuyerForm{ShopName: "Other", Location: "Elsewhere"})
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
		_, err = env.svc.RegisterSeller(ctx, "shop", SellerForm{Address: "x", Crops: []string{"y"}, HarvestSeason: domain.SeasonFall})
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

		p, err = env.svc.CurrentUser(ctx, "shop")
		require.NoError(t, err)
		assert.Equal(t, id, p.Base().ID)
		assert.Equal(t, domain.RoleBuyer, p.Base().Role)
	})

	t.Run("seller joins the directory", func(t *testing.T) {
		seller := env.registerSeller(t, "farm")
		assert.Equal(t, domain.RoleSeller, seller.Role)
		_, ok := env.svc.Seller(seller.ID)
		assert.True(t, ok)
	})

	t.Run("needs a login first", func(t *testing.T) {
		_, err := env.svc.RegisterSeller(ctx, "nobody", SellerForm{})
		assert.ErrorIs(t, err, domain.ErrNoIdentity)
	})

	t.Run("role must match the login", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "mixed", LoginForm{Name: "A", Mobile: "1234567890", Email: "a@b.co", Role: domain.RoleBuyer})
		require.NoError(t, err)
		_, err = env.svc.RegisterSeller(ctx, "mixed", SellerForm{Address: "x", Crops: []string{"y"}, HarvestSeason: domain.SeasonFall})
		assert.ErrorIs(t, err, domain.ErrWrongRole)
	})

	t.Run("form errors", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "grower", LoginForm{Name: "G", Mobile: "1234567890", Email: "g@b.co", Role: domain.RoleSeller})
		require.NoError(t, err)

		_, err = env.svc.RegisterSeller(ctx, "grower", SellerForm{})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, map[string]string{
			"address":       "Address is required",
			"crops":         "Please select at least one crop",
			"harvestSeason": "Please select a harvest season",
		}, verr.Fields)

		p, err := env.svc.CurrentUser(ctx, "grower")
		require.NoError(t, err)
		_, stillBase := p.(domain.User)
		assert.True(t, stillBase)
	})
}

func TestRegister_DirectoryWriteFailure(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	t.Run("buyer can retry", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "shop", LoginForm{Name: "Ravi Stores", Mobile: "9123456780", Email: "ravi@example.com", Role: domain.RoleBuyer})
		require.NoError(t, err)
		form := BuyerForm{ShopName: "Ravi Stores", Location: "5 Bazaar Road"}

		env.writes.err = errors.New("quota exceeded")
		_, err = env.svc.RegisterBuyer(ctx, "shop", form)
		env.writes.err = nil
		require.Error(t, err)
		assert.Len(t, env.svc.Buyers(), 2)

		p, err := env.svc.CurrentUser(ctx, "shop")
		require.NoError(t, err)
		_, stillBase := p.(domain.User)
		assert.True(t, stillBase)

		buyer, err := env.svc.RegisterBuyer(ctx, "shop", form)
		require.NoError(t, err)
		_, ok := env.svc.Buyer(buyer.ID)
		assert.True(t, ok)
	})

	t.Run("seller can retry", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "farm", LoginForm{Name: "Asha Patel", Mobile: "9876543210", Email: "asha@example.com", Role: domain.RoleSeller})
		require.NoError(t, err)
		form := SellerForm{Address: "12 Orchard Lane", Crops: []string{"Mangoes"}, HarvestSeason: domain.SeasonSummer}

		env.writes.err = errors.New("quota exceeded")
		_, err = env.svc.RegisterSeller(ctx, "farm", form)
		env.writes.err = nil
		require.Error(t, err)

		seller, err := env.svc.RegisterSeller(ctx, "farm", form)
		require.NoError(t, err)
		_, ok := env.svc.Seller(seller.ID)
		assert.True(t, ok)
	})
}

func TestCreateRequest_WriteFailureLeavesNoProduct(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "farm")
	buyer := env.registerBuyer(t, "shop")

	env.writes.err = errors.New("quota exceeded")
	_, err := env.svc.CreateRequest(ctx, "farm", validRequest(buyer.ID))
	env.writes.err = nil
	require.Error(t, err)
	assert.False(t, IsClientError(err))

	assert.Empty(t, env.svc.SellerProducts(seller.ID))
	assert.Empty(t, env.catalog.SellerRequests(seller.ID))
}

func TestCreateRequest(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "farm")

	t.Run("creates product and pending request", func(t *testing.T) {
		req, err := env.svc.CreateRequest(ctx, "farm", validRequest("buyer-1"))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, req.Status)
		assert.Equal(t, seller.ID, req.SellerID)
		assert.Equal(t, "buyer-1", req.BuyerID)
		assert.Equal(t, "Tomatoes", req.Product.Name)
		assert.Equal(t, seller.ID, req.Product.SellerID)

		products := env.svc.SellerProducts(seller.ID)
		require.Len(t, products, 1)
		assert.Equal(t, req.Product, products[0])
	})

	t.Run("unknown buyer", func(t *testing.T) {
		_, err := env.svc.CreateRequest(ctx, "farm", validRequest("buyer-404"))
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Please select a buyer", verr.Fields["buyerId"])
	})

	t.Run("field validation", func(t *testing.T) {
		_, err := env.svc.CreateRequest(ctx, "farm", RequestForm{
			Price:              float(0),
			Quantity:           float(-1),
			Unit:               "ton",
			TransportationCost: float(-5),
		})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, map[string]string{
			"productName":        "Product name is required",
			"price":              "Please enter a valid price",
			"quantity":           "Please enter a valid quantity",
			"unit":               "Please select a valid unit",
			"buyerId":            "Please select a buyer",
			"transportationCost": "Please enter a valid transportation cost",
		}, verr.Fields)
	})

	t.Run("zero transportation cost is fine", func(t *testing.T) {
		form := validRequest("buyer-2")
		form.TransportationCost = float(0)
		_, err := env.svc.CreateRequest(ctx, "farm", form)
		assert.NoError(t, err)
	})

	t.Run("only sellers create requests", func(t *testing.T) {
		env.registerBuyer(t, "shop")
		_, err := env.svc.CreateRequest(ctx, "shop", validRequest("buyer-1"))
		assert.ErrorIs(t, err, domain.ErrWrongRole)

		_, err = env.svc.CreateRequest(ctx, "anonymous", validRequest("buyer-1"))
		assert.ErrorIs(t, err, domain.ErrNoIdentity)
	})
}

func TestDecide(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	env.registerSeller(t, "farm")
	buyer := env.registerBuyer(t, "shop")
	env.registerBuyer(t, "other-shop")

	req, err := env.svc.CreateRequest(ctx, "farm", validRequest(buyer.ID))
	require.NoError(t, err)

	t.Run("another buyer cannot decide", func(t *testing.T) {
		_, err := env.svc.Decide(ctx, "other-shop", req.ID, domain.StatusAccepted)
		assert.ErrorIs(t, err, domain.ErrNotRequestBuyer)
	})

	t.Run("seller cannot decide", func(t *testing.T) {
		_, err := env.svc.Decide(ctx, "farm", req.ID, domain.StatusAccepted)
		assert.ErrorIs(t, err, domain.ErrWrongRole)
	})

	t.Run("buyer accepts", func(t *testing.T) {
		got, err := env.svc.Decide(ctx, "shop", req.ID, domain.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, got.Status)
	})

	t.Run("decided requests stay decided", func(t *testing.T) {
		_, err := env.svc.Decide(ctx, "shop", req.ID, domain.StatusRejected)
		assert.ErrorIs(t, err, domain.ErrRequestClosed)
		stored, _ := env.catalog.RequestByID(req.ID)
		assert.Equal(t, domain.StatusAccepted, stored.Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := env.svc.Decide(ctx, "shop", "request-404", domain.StatusAccepted)
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		_, err := env.svc.Decide(ctx, "shop", req.ID, domain.StatusPending)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestDashboard(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	seller := env.registerSeller(t, "farm")
	buyer := env.registerBuyer(t, "shop")

	first, err := env.svc.CreateRequest(ctx, "farm", validRequest(buyer.ID))
	require.NoError(t, err)
	second, err := env.svc.CreateRequest(ctx, "farm", validRequest(buyer.ID))
	require.NoError(t, err)
	_, err = env.svc.CreateRequest(ctx, "farm", validRequest("buyer-1"))
	require.NoError(t, err)

	_, err = env.svc.Decide(ctx, "shop", first.ID, domain.StatusAccepted)
	require.NoError(t, err)
	_, err = env.svc.Decide(ctx, "shop", second.ID, domain.StatusRejected)
	require.NoError(t, err)

	t.Run("buyer", func(t *testing.T) {
		d, err := env.svc.Dashboard(ctx, "shop")
		require.NoError(t, err)
		assert.Empty(t, d.Pending)
		require.Len(t, d.Accepted, 1)
		require.Len(t, d.Rejected, 1)
		assert.Nil(t, d.Products)

		v := d.Accepted[0]
		require.NotNil(t, v.Counterparty)
		assert.Equal(t, seller.ID, v.Counterparty.ID)
		assert.Equal(t, "9876543210", v.Counterparty.Mobile)
		assert.Equal(t, "1100", v.Total.String())
	})

	t.Run("seller", func(t *testing.T) {
		d, err := env.svc.Dashboard(ctx, "farm")
		require.NoError(t, err)
		assert.Len(t, d.Pending, 1)
		assert.Len(t, d.Accepted, 1)
		assert.Len(t, d.Rejected, 1)
		assert.Len(t, d.Products, 3)
		assert.Equal(t, "Green Grocery", d.Pending[0].Counterparty.Name)
	})

	t.Run("unregistered", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "new", LoginForm{Name: "N", Mobile: "1234567890", Email: "n@b.co", Role: domain.RoleBuyer})
		require.NoError(t, err)
		_, err = env.svc.Dashboard(ctx, "new")
		assert.ErrorIs(t, err, domain.ErrWrongRole)
	})
}

func TestWatch(t *testing.T) {
	env := setupService(t)
	seller := env.registerSeller(t, "farm")
	buyer := env.registerBuyer(t, "shop")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := env.svc.Watch(ctx, "shop")
	require.NoError(t, err)

	// a request for somebody else is filtered out
	_, err = env.svc.CreateRequest(ctx, "farm", validRequest("buyer-2"))
	require.NoError(t, err)
	mine, err := env.svc.CreateRequest(ctx, "farm", validRequest(buyer.ID))
	require.NoError(t, err)

	select {
	case e := <-ch:
		assert.Equal(t, events.RequestCreated, e.Type)
		assert.Equal(t, mine.ID, e.Request.ID)
		assert.Equal(t, seller.ID, e.Request.SellerID)
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	t.Run("base users cannot watch", func(t *testing.T) {
		_, err := env.svc.Login(ctx, "new", LoginForm{Name: "N", Mobile: "1234567890", Email: "n@b.co", Role: domain.RoleBuyer})
		require.NoError(t, err)
		_, err = env.svc.Watch(ctx, "new")
		assert.ErrorIs(t, err, domain.ErrWrongRole)
	})
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&domain.ValidationError{Fields: map[string]string{"a": "b"}}))
	assert.True(t, IsClientError(domain.ErrRequestClosed))
	assert.False(t, IsClientError(errors.New("redis: connection refused")))
}
