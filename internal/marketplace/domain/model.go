package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role tags a user as one side of the marketplace
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Season is a seller's primary harvest season
type Season string

const (
	SeasonSpring    Season = "Spring"
	SeasonSummer    Season = "Summer"
	SeasonFall      Season = "Fall"
	SeasonWinter    Season = "Winter"
	SeasonYearRound Season = "Year-round"
)

// Seasons lists the accepted harvest seasons in display order
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonYearRound}

// Valid reports whether s is one of Seasons
func (s Season) Valid() bool {
	for _, known := range Seasons {
		if s == known {
			return true
		}
	}
	return false
}

// Units offered by the request form. The store itself accepts any unit.
var Units = []string{"kg", "gram", "dozen", "piece", "bundle", "crate"}

// Weekdays are the accepted values for a buyer's holidays
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// User is the identity shared by buyers and sellers
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Mobile string `json:"mobile" yaml:"mobile"`
	Email  string `json:"email" yaml:"email"`
	Role   Role   `json:"role" yaml:"role"`
}

// Buyer is a retail shop
type Buyer struct {
	User        `yaml:",inline"`
	ShopName    string   `json:"shopName" yaml:"shopName"`
	Location    string   `json:"location" yaml:"location"`
	OpeningTime string   `json:"openingTime" yaml:"openingTime"`
	ClosingTime string   `json:"closingTime" yaml:"closingTime"`
	Holidays    []string `json:"holidays" yaml:"holidays"`
}

// Seller is a farm
type Seller struct {
	User          `yaml:",inline"`
	Address       string   `json:"address" yaml:"address"`
	Crops         []string `json:"crops" yaml:"crops"`
	HarvestSeason Season   `json:"harvestSeason" yaml:"harvestSeason"`
}

// Product is an item a seller offers
type Product struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
	SellerID string  `json:"sellerId" yaml:"sellerId"`
}

// SellingRequest is a seller's offer of a product to one buyer.
// Product is a snapshot taken when the request was created.
type SellingRequest struct {
	ID                 string    `json:"id" yaml:"id"`
	Product            Product   `json:"product" yaml:"product"`
	SellerID           string    `json:"sellerId" yaml:"sellerId"`
	BuyerID            string    `json:"buyerId" yaml:"buyerId"`
	Status             Status    `json:"status" yaml:"status"`
	TransportationCost float64   `json:"transportationCost" yaml:"transportationCost"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
}

// Total is price × quantity plus transportation cost
func (r SellingRequest) Total() decimal.Decimal {
	price := decimal.NewFromFloat(r.Product.Price)
	qty := decimal.NewFromFloat(r.Product.Quantity)
	return price.Mul(qty).Add(decimal.NewFromFloat(r.TransportationCost))
}

// NewProduct holds the data needed to add a product
type NewProduct struct {
	Name     string
	Price    float64
	Quantity float64
	Unit     string
	SellerID string
}

// NewSellingRequest holds the data needed to create a selling request
type NewSellingRequest struct {
	Product            Product
	SellerID           string
	BuyerID            string
	TransportationCost float64
}

// Clone returns a copy of b that shares no slices with it
func (b Buyer) Clone() Buyer {
	b.Holidays = append([]string(nil), b.Holidays...)
	return b
}

// Clone returns a copy of s that shares no slices with it
func (s Seller) Clone() Seller {
	s.Crops = append([]string(nil), s.Crops...)
	return s
}
