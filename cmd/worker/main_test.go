package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/green-harvest/harvest-backend/internal/marketplace/catalog"
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshotRoundTrips(t *testing.T) {
	fixtures, err := catalog.DefaultFixtures()
	require.NoError(t, err)

	fixtures.Products = []domain.Product{{ID: "product-1", Name: "Tomatoes", Price: 20, Quantity: 50, Unit: "kg", SellerID: "seller-1"}}
	fixtures.Requests = []domain.SellingRequest{{
		ID:                 "request-1",
		Product:            fixtures.Products[0],
		SellerID:           "seller-1",
		BuyerID:            "buyer-1",
		Status:             domain.StatusAccepted,
		TransportationCost: 100,
		CreatedAt:          time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, fixtures))

	parsed, err := catalog.ParseFixtures(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, fixtures, parsed)
	assert.Contains(t, buf.String(), "shopName: Green Grocery Store")
}
