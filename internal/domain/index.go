package domain

import "strings"

// IndexStatus values for a predefined index.
const (
	IndexStatusActive   = "Active"
	IndexStatusInactive = "Inactive"
)

// IndexDefinition is the fixed, in-process description of an index: which
// markets it holds, which side of each, and where its backing token lives
// on-chain. Definitions are read-only and enumerable; they are never fetched
// remotely or created by users.
type IndexDefinition struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// MarketIDs lists the constituent market ids in slot order.
	MarketIDs []string `json:"marketIds"`

	// PositionCodes is parallel to MarketIDs; 1 means the YES side, any
	// other value the NO side.
	PositionCodes []int `json:"positionCodes"`

	// Provider is the namespace the constituent market ids belong to.
	Provider string `json:"provider"`

	// ContractAddress is the on-chain vault backing this index. Opaque to
	// the aggregation core.
	ContractAddress string `json:"contractAddress"`

	// Status is "Active" or "Inactive" (case-insensitive).
	Status string `json:"status"`

	// ResolutionTime is free text such as "Resolves in 45 days".
	ResolutionTime string `json:"resolutionTime"`

	// ConfirmedYield is the settled-yield percentage reported once the
	// index expires. Zero means use the default.
	ConfirmedYield float64 `json:"confirmedYield,omitempty"`
}

// Expired reports whether the definition's status marks it settled.
func (d IndexDefinition) Expired() bool {
	return strings.EqualFold(d.Status, IndexStatusInactive)
}

// Index is a resolved index: the definition plus its constituent Markets and
// the composite metrics derived from them. All derived fields are computed by
// the compositor, never supplied externally.
type Index struct {
	IndexDefinition

	// Markets is the resolved constituent list, in MarketIDs slot order.
	Markets []Market `json:"markets,omitempty"`

	// AvgPrice is the mean constituent price, rounded to 2 decimals.
	AvgPrice float64 `json:"avgPrice"`

	// Volume is the summed constituent volume in millions, 2 decimals.
	Volume float64 `json:"volume"`

	// PriceChange24h, YieldRange, and YieldLoss are signed percentage
	// strings, e.g. "+2.41%", "+33.9%", "-17.0%".
	PriceChange24h string `json:"priceChange24h"`
	YieldRange     string `json:"yieldRange"`
	YieldLoss      string `json:"yieldLoss"`

	DaysRemaining int `json:"daysRemaining"`

	// SettlementDate is today plus DaysRemaining, formatted YYYYMMDD.
	SettlementDate string `json:"settlementDate"`

	MarketCap float64 `json:"marketCap"`

	// IsExpired mirrors the definition status at resolution time.
	IsExpired bool `json:"expired"`

	// Degraded marks an index that was wholly synthesized after resolution
	// failed.
	Degraded bool `json:"degraded,omitempty"`
}
