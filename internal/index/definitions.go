// Package index implements the aggregation core: it resolves predefined
// index definitions into full Index views by fetching constituent market
// data, merging order books and trade histories, and computing the composite
// metrics every dashboard view displays. Failed upstream fetches are replaced
// with synthetic placeholder data so resolution always yields a usable index.
package index

import (
	"fmt"

	"github.com/basketwatch/indexd/internal/domain"
)

// builtinDefinitions is the fixed set of indexes the dashboard tracks. The
// list is read-only and enumerable; indexes are defined at release time, not
// created by users.
var builtinDefinitions = []domain.IndexDefinition{
	{
		ID:   "ai-frontier-4",
		Name: "AI Frontier Index",
		MarketIDs: []string{
			"0xa1f09b3f2c5e8d4417c06c1c2a5b9e6f",
			"0xb2d41c7a9e3f50288d17e4b6c8a2f091",
			"0xc3e52d8b0f4a61399e28f5c7d9b30a12",
			"0xd4f63e9c1a5b72400f39a6d8e0c41b23",
		},
		PositionCodes:   []int{1, 1, 2, 1},
		Provider:        "polymarket",
		ContractAddress: "0x7f3Ba2c91De04a5cE83f1b9D2467e05A3c218Ffd",
		Status:          domain.IndexStatusActive,
		ResolutionTime:  "Resolves in 45 days",
	},
	{
		ID:   "election-sweep-3",
		Name: "Election Sweep Index",
		MarketIDs: []string{
			"0xe5a74f0d2b6c83511a40b7e9f1d52c34",
			"0xf6b85a1e3c7d94622b51c8f0a2e63d45",
			"0x07c96b2f4d8ea5733c62d9a1b3f74e56",
		},
		PositionCodes:   []int{1, 2, 1},
		Provider:        "polymarket",
		ContractAddress: "0x9aC4d17E52bF06a3dA91c0e8F5672B4D3e109Aac",
		Status:          domain.IndexStatusActive,
		ResolutionTime:  "Resolves in 120 days",
	},
	{
		ID:   "rate-cut-2",
		Name: "Rate Cut Index",
		MarketIDs: []string{
			"0x18da7c305e9fb6844d73e0b2c4085f67",
			"0x29eb8d416fa0c7955e84f1c3d5196a78",
		},
		PositionCodes:   []int{1, 1},
		Provider:        "polymarket",
		ContractAddress: "0xb5E6f28A94cD17B4eB02d1F9A6783C5E4F21aBbe",
		Status:          domain.IndexStatusActive,
		ResolutionTime:  "Resolves in 30 days",
	},
	{
		ID:   "btc-milestones-3",
		Name: "BTC Milestones Index",
		MarketIDs: []string{
			"0x3afc9e527ab1d8a66f95a2d4e62a7b89",
			"0x4bad0f638bc2e9b770a6b3e5f73b8c90",
			"0x5cbe1a749cd3fac881b7c4f6084c9da1",
		},
		PositionCodes:   []int{1, 2, 2},
		Provider:        "polymarket",
		ContractAddress: "0xc7F830B15eDA28C5fC13E20Ab794D6F5012cDdef",
		Status:          domain.IndexStatusInactive,
		ResolutionTime:  "Resolved",
		ConfirmedYield:  12.4,
	},
}

// Catalog is the in-process index definition source.
type Catalog struct {
	defs []domain.IndexDefinition
}

// NewCatalog returns a catalog over the given definitions, or the built-in
// set when defs is empty.
func NewCatalog(defs []domain.IndexDefinition) *Catalog {
	if len(defs) == 0 {
		defs = builtinDefinitions
	}
	return &Catalog{defs: defs}
}

// All returns every definition in declaration order. The returned slice is a
// copy; callers may not mutate catalog state.
func (c *Catalog) All() []domain.IndexDefinition {
	out := make([]domain.IndexDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition with the given id, or ErrNotFound.
func (c *Catalog) Lookup(id string) (domain.IndexDefinition, error) {
	for _, d := range c.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.IndexDefinition{}, fmt.Errorf("index: lookup %q: %w", id, domain.ErrNotFound)
}
