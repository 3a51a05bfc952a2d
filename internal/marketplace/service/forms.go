package service

import (
	"regexp"
	"strings"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// LoginForm collects the base identity and the role the user signs up for
type LoginForm struct {
	Name   string      `json:"name"`
	Mobile string      `json:"mobile"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

func (f LoginForm) Validate() error {
	var verr domain.ValidationError

	if strings.TrimSpace(f.Name) == "" {
		verr.Add("name", "Name is required")
	}

	switch {
	case strings.TrimSpace(f.Mobile) == "":
		verr.Add("mobile", "Mobile number is required")
	case !mobilePattern.MatchString(f.Mobile):
		verr.Add("mobile", "Please enter a valid 10-digit mobile number")
	}

	switch {
	case strings.TrimSpace(f.Email) == "":
		verr.Add("email", "Email is required")
	case !emailPattern.MatchString(f.Email):
		verr.Add("email", "Please enter a valid email address")
	}

	if !f.Role.Valid() {
		verr.Add("role", "Please choose buyer or seller")
	}

	return verr.OrNil()
}

// BuyerForm completes a buyer registration
type BuyerForm struct {
	ShopName    string   `json:"shopName"`
	Location    string   `json:"location"`
	OpeningTime string   `json:"openingTime"`
	ClosingTime string   `json:"closingTime"`
	Holidays    []string `json:"holidays"`
}

func (f BuyerForm) Validate() error {
	var verr domain.ValidationError

	if strings.TrimSpace(f.ShopName) == "" {
		verr.Add("shopName", "Shop name is required")
	}
	if strings.TrimSpace(f.Location) == "" {
		verr.Add("location", "Location is required")
	}
	for _, day := range f.Holidays {
		if !contains(domain.Weekdays, day) {
			verr.Add("holidays", "Please select days of the week")
		}
	}

	return verr.OrNil()
}

func (f BuyerForm) details() domain.BuyerDetails {
	return domain.BuyerDetails{
		ShopName:    strings.TrimSpace(f.ShopName),
		Location:    strings.TrimSpace(f.Location),
		OpeningTime: f.OpeningTime,
		ClosingTime: f.ClosingTime,
		Holidays:    f.Holidays,
	}
}

// SellerForm completes a seller registration
type SellerForm struct {
	Address       string        `json:"address"`
	Crops         []string      `json:"crops"`
	HarvestSeason domain.Season `json:"harvestSeason"`
}

func (f SellerForm) Validate() error {
	var verr domain.ValidationError

	if strings.TrimSpace(f.Address) == "" {
		verr.Add("address", "Address is required")
	}
	if len(f.Crops) == 0 {
		verr.Add("crops", "Please select at least one crop")
	}
	switch {
	case f.HarvestSeason == "":
		verr.Add("harvestSeason", "Please select a harvest season")
	case !f.HarvestSeason.Valid():
		verr.Add("harvestSeason", "Please select a valid harvest season")
	}

	return verr.OrNil()
}

func (f SellerForm) details() domain.SellerDetails {
	return domain.SellerDetails{
		Address:       strings.TrimSpace(f.Address),
		Crops:         f.Crops,
		HarvestSeason: f.HarvestSeason,
	}
}

// RequestForm is the seller's "new selling request" form. Numbers are
// pointers so a missing value can be told apart from zero.
type RequestForm struct {
	ProductName        string   `json:"productName"`
	Price              *float64 `json:"price"`
	Quantity           *float64 `json:"quantity"`
	Unit               string   `json:"unit"`
	BuyerID            string   `json:"buyerId"`
	TransportationCost *float64 `json:"transportationCost"`
}

func (f RequestForm) Validate() error {
	var verr domain.ValidationError

	if strings.TrimSpace(f.ProductName) == "" {
		verr.Add("productName", "Product name is required")
	}

	switch {
	case f.Price == nil:
		verr.Add("price", "Price is required")
	case *f.Price <= 0:
		verr.Add("price", "Please enter a valid price")
	}

	switch {
	case f.Quantity == nil:
		verr.Add("quantity", "Quantity is required")
	case *f.Quantity <= 0:
		verr.Add("quantity", "Please enter a valid quantity")
	}

	switch {
	case f.Unit == "":
		verr.Add("unit", "Unit is required")
	case !contains(domain.Units, f.Unit):
		verr.Add("unit", "Please select a valid unit")
	}

	if f.BuyerID == "" {
		verr.Add("buyerId", "Please select a buyer")
	}

	switch {
	case f.TransportationCost == nil:
		verr.Add("transportationCost", "Transportation cost is required")
	case *f.TransportationCost < 0:
		verr.Add("transportationCost", "Please enter a valid transportation cost")
	}

	return verr.OrNil()
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
