package pricing

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const epsilon = 1e-9

func TestCalculateCost(t *testing.T) {
	p := ModelProfile{ID: "m", InputPricePerMillionTokens: 5.00, OutputPricePerMillionTokens: 15.00}

	tests := []struct {
		name          string
		input, output int
		want          float64
	}{
		{"one million input", 1_000_000, 0, 5.00},
		{"one million output", 0, 1_000_000, 15.00},
		{"mixed", 2_000, 500, 0.0175},
		{"zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateCost(p, tt.input, tt.output); math.Abs(got-tt.want) > epsilon {
				t.Errorf("CalculateCost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	p, ok := table.Get(DefaultModelID)
	if !ok {
		t.Fatalf("default model %q missing", DefaultModelID)
	}
	if p.ProviderID != ProviderDeepSeek || p.APIModel() != "deepseek-chat" {
		t.Errorf("unexpected default profile: %+v", p)
	}

	gpt, _ := table.Get("gpt-4o")
	if gpt.APIModel() != "gpt-4o" {
		t.Errorf("APIModel fallback = %q, want gpt-4o", gpt.APIModel())
	}
	if len(table.List()) != 7 {
		t.Errorf("expected 7 profiles, got %d", len(table.List()))
	}
}

func TestTable_ByCost(t *testing.T) {
	sorted := DefaultTable().ByCost(1000, 1000)
	for i := 1; i < len(sorted); i++ {
		if CalculateCost(sorted[i-1], 1000, 1000) > CalculateCost(sorted[i], 1000, 1000) {
			t.Fatalf("profiles not sorted by cost at %d: %s before %s", i, sorted[i-1].ID, sorted[i].ID)
		}
	}
	if sorted[0].ID != "gpt-4o-mini" {
		t.Errorf("cheapest = %s, want gpt-4o-mini", sorted[0].ID)
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name     string
		profiles []ModelProfile
	}{
		{"empty", nil},
		{"missing id", []ModelProfile{{ProviderID: ProviderOpenAI}}},
		{"duplicate", []ModelProfile{{ID: "a", ProviderID: ProviderOpenAI}, {ID: "a", ProviderID: ProviderOpenAI}}},
		{"bad provider", []ModelProfile{{ID: "a", ProviderID: "azure"}}},
		{"negative price", []ModelProfile{{ID: "a", ProviderID: ProviderOpenAI, InputPricePerMillionTokens: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.profiles); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	doc := `models:
  - id: cheap
    name: Cheap Model
    provider: deepseek
    api_model: deepseek-chat
    input_price: 0.1
    output_price: 0.2
    recommended: true
  - id: gpt-4o
    provider: openai
    input_price: 5
    output_price: 15
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	p, ok := table.Get("cheap")
	if !ok {
		t.Fatal("profile cheap missing")
	}
	if p.DisplayName != "Cheap Model" || p.APIModel() != "deepseek-chat" || !p.Recommended {
		t.Errorf("unexpected profile: %+v", p)
	}
	if g, _ := table.Get("gpt-4o"); g.DisplayName != "gpt-4o" {
		t.Errorf("display name should default to id, got %q", g.DisplayName)
	}
}

func TestLoadTable_Missing(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"hello world", 3},
		{"中文", 1},
		{"こんにちは", 2},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestLedger_RecordAndReset(t *testing.T) {
	l := NewLedger()
	p := ModelProfile{ID: "m", InputPricePerMillionTokens: 5, OutputPricePerMillionTokens: 15}

	cost := l.Record(p, Usage{InputTokens: 1_000_000})
	if math.Abs(cost-5.0) > epsilon {
		t.Errorf("Record cost = %v, want 5", cost)
	}
	l.Record(p, Usage{InputTokens: 10, OutputTokens: 20})

	snap := l.Snapshot()
	if snap.TotalInputTokens != 1_000_010 || snap.TotalOutputTokens != 20 || snap.Requests != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	l.Reset()
	snap = l.Snapshot()
	if snap.TotalInputTokens != 0 || snap.TotalOutputTokens != 0 || snap.CumulativeCost != 0 {
		t.Errorf("Reset left non-zero fields: %+v", snap)
	}
}

func TestLedger_ConcurrentRecord(t *testing.T) {
	l := NewLedger()
	p := ModelProfile{ID: "m", InputPricePerMillionTokens: 1, OutputPricePerMillionTokens: 1}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(p, Usage{InputTokens: 100, OutputTokens: 10})
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	if snap.TotalInputTokens != 5000 || snap.TotalOutputTokens != 500 {
		t.Errorf("lost updates: %+v", snap)
	}
	if math.Abs(snap.CumulativeCost-50*CalculateCost(p, 100, 10)) > epsilon {
		t.Errorf("cumulative cost = %v", snap.CumulativeCost)
	}
}
