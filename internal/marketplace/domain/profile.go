package domain

import (
	"encoding/json"
	"fmt"
)

// Profile is the identity of the current user: a User whose registration is
// still pending, a *Buyer, or a *Seller. Consumers switch on the concrete type.
type Profile interface {
	Base() User
	isProfile()
}

func (u User) Base() User { return u }
func (User) isProfile() {}

// RoleDetails completes a base User into a Buyer or Seller
type RoleDetails interface {
	Role() Role
	Complete(base User, id string) Profile
}

// BuyerDetails are the shop fields collected by buyer registration
type BuyerDetails struct {
	ShopName    string
	Location    string
	OpeningTime string
	ClosingTime string
	Holidays    []string
}

func (BuyerDetails) Role() Role { return RoleBuyer }

func (d BuyerDetails) Complete(base User, id string) Profile {
	base.ID = id
	base.Role = RoleBuyer
	return &Buyer{
		User:        base,
		ShopName:    d.ShopName,
		Location:    d.Location,
		OpeningTime: d.OpeningTime,
		ClosingTime: d.ClosingTime,
		Holidays:    append([]string(nil), d.Holidays...),
	}
}

// SellerDetails are the farm fields collected by seller registration
type SellerDetails struct {
	Address       string
	Crops         []string
	HarvestSeason Season
}

func (SellerDetails) Role() Role { return RoleSeller }

func (d SellerDetails) Complete(base User, id string) Profile {
	base.ID = id
	base.Role = RoleSeller
	return &Seller{
		User:          base,
		Address:       d.Address,
		Crops:         append([]string(nil), d.Crops...),
		HarvestSeason: d.HarvestSeason,
	}
}

// DecodeProfile restores a Profile written by json.Marshal. Buyers and sellers
// are told apart from a bare User by the presence of their role fields.
func DecodeProfile(data []byte) (Profile, error) {
	var shape struct {
		Role     Role    `json:"role"`
		ShopName *string `json:"shopName"`
		Address  *string `json:"address"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	switch {
	case shape.Role == RoleBuyer && shape.ShopName != nil:
		var b Buyer
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode buyer: %w", err)
		}
		return &b, nil
	case shape.Role == RoleSeller && shape.Address != nil:
		var s Seller
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode seller: %w", err)
		}
		return &s, nil
	default:
		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return u, nil
	}
}
