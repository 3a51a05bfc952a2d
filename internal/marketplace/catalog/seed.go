package catalog

import (
	_ "embed"
	"fmt"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Fixtures are the collections a fresh store starts from
type Fixtures struct {
	Buyers   []domain.Buyer          `yaml:"buyers"`
	Sellers  []domain.Seller         `yaml:"sellers"`
	Products []domain.Product        `yaml:"products"`
	Requests []domain.SellingRequest `yaml:"requests"`
}

// DefaultFixtures returns the built-in demo buyers and sellers
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(seedYAML)
}

// ParseFixtures decodes a fixtures document
func ParseFixtures(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}
