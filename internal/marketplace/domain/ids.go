package domain

import "github.com/google/uuid"

// Id prefixes per entity type
const (
	PrefixUser    = "user"
	PrefixBuyer   = "buyer"
	PrefixSeller  = "seller"
	PrefixProduct = "product"
	PrefixRequest = "request"
)

// IDGenerator returns a new unique id for an entity type prefix
type IDGenerator func(prefix string) string

// NewID generates "prefix-<uuid>" (e.g. "request-1b4e28ba-2fa1-11d2-883f-0016d3cca427")
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
