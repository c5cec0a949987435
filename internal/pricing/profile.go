// Package pricing describes the selectable translation models and turns
// provider token usage into money.
package pricing

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Provider IDs.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// DefaultModelID is the profile selected when nothing else is configured.
const DefaultModelID = "deepseek-v3-0324"

// ModelProfile is one selectable translation engine and its per-token prices
// in USD per million tokens.
type ModelProfile struct {
	ID                          string  `yaml:"id" json:"id"`
	DisplayName                 string  `yaml:"name" json:"name"`
	ProviderID                  string  `yaml:"provider" json:"provider"`
	APIModelName                string  `yaml:"api_model" json:"api_model"`
	InputPricePerMillionTokens  float64 `yaml:"input_price" json:"input_price"`
	OutputPricePerMillionTokens float64 `yaml:"output_price" json:"output_price"`
	Description                 string  `yaml:"description" json:"description,omitempty"`
	Recommended                 bool    `yaml:"recommended" json:"recommended"`
}

// APIModel returns the model name sent on the wire.
func (p ModelProfile) APIModel() string {
	if p.APIModelName != "" {
		return p.APIModelName
	}
	return p.ID
}

// Table is the read-only set of model profiles, kept in declaration order.
type Table struct {
	profiles []ModelProfile
	byID     map[string]int
}

// NewTable validates profiles and builds a table.
func NewTable(profiles []ModelProfile) (*Table, error) {
	t := &Table{byID: make(map[string]int, len(profiles))}
	for _, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("model profile without id")
		}
		if _, dup := t.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate model profile %q", p.ID)
		}
		switch p.ProviderID {
		case ProviderOpenAI, ProviderDeepSeek:
		default:
			return nil, fmt.Errorf("model %q: unsupported provider %q", p.ID, p.ProviderID)
		}
		if p.InputPricePerMillionTokens < 0 || p.OutputPricePerMillionTokens < 0 {
			return nil, fmt.Errorf("model %q: negative price", p.ID)
		}
		if p.DisplayName == "" {
			p.DisplayName = p.ID
		}
		t.byID[p.ID] = len(t.profiles)
		t.profiles = append(t.profiles, p)
	}
	if len(t.profiles) == 0 {
		return nil, fmt.Errorf("model table is empty")
	}
	return t, nil
}

// DefaultTable returns the built-in price table.
func DefaultTable() *Table {
	t, err := NewTable(defaultProfiles)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a YAML price table of the form
//
//	models:
//	  - id: gpt-4o
//	    provider: openai
//	    input_price: 5
//	    output_price: 15
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from config
	if err != nil {
		return nil, fmt.Errorf("failed to read model table: %w", err)
	}
	var doc struct {
		Models []ModelProfile `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse model table %s: %w", path, err)
	}
	return NewTable(doc.Models)
}

// Get returns the profile for id.
func (t *Table) Get(id string) (ModelProfile, bool) {
	i, ok := t.byID[id]
	if !ok {
		return ModelProfile{}, false
	}
	return t.profiles[i], true
}

// List returns all profiles in table order.
func (t *Table) List() []ModelProfile {
	out := make([]ModelProfile, len(t.profiles))
	copy(out, t.profiles)
	return out
}

// ByCost returns all profiles sorted from cheapest to most expensive for a
// request of the given token counts.
func (t *Table) ByCost(inputTokens, outputTokens int) []ModelProfile {
	out := t.List()
	sort.SliceStable(out, func(i, j int) bool {
		return CalculateCost(out[i], inputTokens, outputTokens) < CalculateCost(out[j], inputTokens, outputTokens)
	})
	return out
}

var defaultProfiles = []ModelProfile{
	{
		ID:                          "gpt-4o",
		DisplayName:                 "GPT-4o",
		ProviderID:                  ProviderOpenAI,
		InputPricePerMillionTokens:  5.00,
		OutputPricePerMillionTokens: 15.00,
		Description:                 "Strongest OpenAI model, best translation quality",
		Recommended:                 true,
	},
	{
		ID:                          "gpt-4o-mini",
		DisplayName:                 "GPT-4o Mini",
		ProviderID:                  ProviderOpenAI,
		InputPricePerMillionTokens:  0.15,
		OutputPricePerMillionTokens: 0.60,
		Description:                 "Best OpenAI value for high-volume translation",
		Recommended:                 true,
	},
	{
		ID:                          "gpt-4-turbo",
		DisplayName:                 "GPT-4 Turbo",
		ProviderID:                  ProviderOpenAI,
		InputPricePerMillionTokens:  10.00,
		OutputPricePerMillionTokens: 30.00,
		Description:                 "High quality, faster than GPT-4",
	},
	{
		ID:                          "gpt-4",
		DisplayName:                 "GPT-4",
		ProviderID:                  ProviderOpenAI,
		InputPricePerMillionTokens:  30.00,
		OutputPricePerMillionTokens: 60.00,
		Description:                 "Classic GPT-4, stable but expensive",
	},
	{
		ID:                          "gpt-3.5-turbo",
		DisplayName:                 "GPT-3.5 Turbo",
		ProviderID:                  ProviderOpenAI,
		InputPricePerMillionTokens:  0.50,
		OutputPricePerMillionTokens: 1.50,
		Description:                 "Cheapest OpenAI option for basic translation",
	},
	{
		ID:                          "deepseek-v3-0324",
		DisplayName:                 "DeepSeek V3-0324",
		ProviderID:                  ProviderDeepSeek,
		APIModelName:                "deepseek-chat",
		InputPricePerMillionTokens:  0.27,
		OutputPricePerMillionTokens: 1.10,
		Description:                 "DeepSeek V3, strong quality at a low price",
		Recommended:                 true,
	},
	{
		ID:                          "deepseek-r1-0528",
		DisplayName:                 "DeepSeek R1-0528",
		ProviderID:                  ProviderDeepSeek,
		APIModelName:                "deepseek-reasoner",
		InputPricePerMillionTokens:  0.55,
		OutputPricePerMillionTokens: 2.19,
		Description:                 "DeepSeek reasoning model",
		Recommended:                 true,
	},
}
