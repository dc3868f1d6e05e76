// Package pricing holds the local plan catalog used when the backend is not consulted.
package pricing

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlans []byte

// Plan is one purchasable tier.
type Plan struct {
	ID       string          `json:"id" yaml:"id" toml:"id"`
	Name     string          `json:"name" yaml:"name" toml:"name"`
	Tagline  string          `json:"tagline,omitempty" yaml:"tagline" toml:"tagline"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount" toml:"amount"`
	Currency string          `json:"currency" yaml:"currency" toml:"currency"`
	Period   string          `json:"period" yaml:"period" toml:"period"`
}

// Price renders the display price, e.g. "BDT 999".
func (p Plan) Price() string {
	return strings.TrimSpace(p.Currency + " " + p.Amount.String())
}

type catalogFile struct {
	Plans []Plan `json:"plans" yaml:"plans" toml:"plans"`
}

// Catalog is an ordered, id-indexed set of plans.
type Catalog struct {
	plans []Plan
	idx   map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := parse(defaultPlans, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("pricing: embedded plans invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML, JSON or TOML file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return parse(raw, filepath.Ext(path))
}

func parse(data []byte, ext string) (*Catalog, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var (
		file catalogFile
		err  error
	)
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		if err = yaml.Unmarshal(data, &file); err != nil {
			err = json.Unmarshal(data, &file)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, errors.New("plans file contains no plans")
	}

	c := &Catalog{
		plans: make([]Plan, 0, len(file.Plans)),
		idx:   make(map[string]int, len(file.Plans)),
	}
	for i, p := range file.Plans {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		p.Name = strings.TrimSpace(p.Name)
		p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
		if p.ID == "" {
			return nil, fmt.Errorf("plans[%d]: id is required", i)
		}
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("plan %q: amount must not be negative", p.ID)
		}
		if p.Currency == "" {
			p.Currency = "BDT"
		}
		if _, dup := c.idx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		c.idx[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

// All returns the plans in file order.
func (c *Catalog) All() []Plan {
	if c == nil {
		return nil
	}
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ByID looks a plan up case-insensitively.
func (c *Catalog) ByID(id string) (Plan, bool) {
	if c == nil {
		return Plan{}, false
	}
	i, ok := c.idx[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Plan{}, false
	}
	return c.plans[i], true
}

// Amount returns the plan's amount and currency.
func (c *Catalog) Amount(id string) (decimal.Decimal, string, error) {
	p, ok := c.ByID(id)
	if !ok {
		return decimal.Zero, "", fmt.Errorf("unknown plan %q", id)
	}
	return p.Amount, p.Currency, nil
}
