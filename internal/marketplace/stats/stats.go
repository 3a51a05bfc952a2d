// Package stats summarises selling requests for periodic reports.
package stats

import (
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/shopspring/decimal"
)

// Summary counts requests per status. Values are the summed request totals.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Pending  int `json:"pending" yaml:"pending"`
	Accepted int `json:"accepted" yaml:"accepted"`
	Rejected int `json:"rejected" yaml:"rejected"`

	PendingValue  decimal.Decimal `json:"pendingValue" yaml:"pendingValue"`
	AcceptedValue decimal.Decimal `json:"acceptedValue" yaml:"acceptedValue"`
}

func Summarize(requests []domain.SellingRequest) Summary {
	var s Summary
	for _, r := range requests {
		s.Total++
		switch r.Status {
		case domain.StatusAccepted:
			s.Accepted++
			s.AcceptedValue = s.AcceptedValue.Add(r.Total())
		case domain.StatusRejected:
			s.Rejected++
		default:
			s.Pending++
			s.PendingValue = s.PendingValue.Add(r.Total())
		}
	}
	return s
}
