// Package metadata supplies item royalty policy to the engine: a YAML
// catalog for local deployments and an LRU cache in front of any source.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bourse/internal/market"
)

// Source is anything that can answer a royalty lookup.
type Source interface {
	RoyaltyInfo(ctx context.Context, item string) (market.RoyaltyInfo, error)
}

// Catalog is a static set of item policies read from YAML:
//
//	items:
//	  item-1:
//	    basis_points: 250
//	    creators:
//	      - address: carol
//	        verified: true
//	        share: 100
type Catalog struct {
	items map[string]market.RoyaltyInfo
}

type catalogFile struct {
	Items map[string]market.RoyaltyInfo `yaml:"items"`
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes catalog YAML. Unknown fields are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Items == nil {
		f.Items = make(map[string]market.RoyaltyInfo)
	}
	return &Catalog{items: f.Items}, nil
}

// EmptyCatalog returns a catalog that knows no items.
func EmptyCatalog() *Catalog {
	return &Catalog{items: make(map[string]market.RoyaltyInfo)}
}

// Items returns every catalogued item, sorted.
func (c *Catalog) Items() []string {
	out := make([]string, 0, len(c.items))
	for item := range c.items {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// RoyaltyInfo returns the policy of item.
func (c *Catalog) RoyaltyInfo(_ context.Context, item string) (market.RoyaltyInfo, error) {
	info, ok := c.items[item]
	if !ok {
		return market.RoyaltyInfo{}, fmt.Errorf("%s: %w", item, market.ErrUnknownItem)
	}
	if len(info.Creators) == 0 {
		return market.RoyaltyInfo{}, fmt.Errorf("%s: %w", item, market.ErrMissingCreators)
	}
	return clone(info), nil
}

func clone(info market.RoyaltyInfo) market.RoyaltyInfo {
	creators := make([]market.Creator, len(info.Creators))
	copy(creators, info.Creators)
	info.Creators = creators
	return info
}
