package batch

import (
	"strings"
	"testing"

	"github.com/devfikr/subpolish/internal/models"
)

func items(contents ...string) []models.CaptionContent {
	out := make([]models.CaptionContent, len(contents))
	for i, c := range contents {
		out[i] = models.CaptionContent{Index: i + 1, Content: c}
	}
	return out
}

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		content string
		cpt     int
		want    int
	}{
		{"", 3, 0},
		{"a", 3, 1},
		{"abc", 3, 1},
		{"abcd", 3, 2},
		{"abcdef", 3, 2},
		{"abcd", 0, 2}, // default ratio kicks in
	}
	for _, c := range cases {
		if got := EstimateTokens(c.content, c.cpt); got != c.want {
			t.Errorf("EstimateTokens(%q, %d) = %d, want %d", c.content, c.cpt, got, c.want)
		}
	}
}

func TestPlanPartitionsExactly(t *testing.T) {
	in := items("aaa", "bbb", "ccc", "ddd", "eee")
	batches := Plan(in, 2, 3) // each item costs 1 token, 2 per batch

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	var flat []models.CaptionContent
	for i, b := range batches {
		if b.BatchNumber != i+1 {
			t.Errorf("batch %d: BatchNumber = %d", i, b.BatchNumber)
		}
		if b.TotalBatches != len(batches) {
			t.Errorf("batch %d: TotalBatches = %d, want %d", i, b.TotalBatches, len(batches))
		}
		flat = append(flat, b.Items...)
	}
	if len(flat) != len(in) {
		t.Fatalf("partition lost items: %d vs %d", len(flat), len(in))
	}
	for i := range in {
		if flat[i] != in[i] {
			t.Errorf("item %d out of order: %+v vs %+v", i, flat[i], in[i])
		}
	}
}

func TestPlanOversizedItemGetsOwnBatch(t *testing.T) {
	huge := strings.Repeat("x", 300) // 100 tokens at 3 chars/token
	in := items("aaa", huge, "bbb")
	batches := Plan(in, 10, 3)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[1].Items) != 1 || batches[1].Items[0].Content != huge {
		t.Fatalf("oversized item not alone in its batch: %+v", batches[1])
	}
}

func TestPlanDeterministic(t *testing.T) {
	in := items("alpha", "beta", "gamma", "delta")
	a := Plan(in, 3, 3)
	b := Plan(in, 3, 3)
	if len(a) != len(b) {
		t.Fatalf("batch counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i].Items) != len(b[i].Items) {
			t.Errorf("batch %d sizes differ", i)
		}
	}
}

func TestPlanEmpty(t *testing.T) {
	if got := Plan(nil, 10, 3); got != nil {
		t.Errorf("Plan(nil) = %v, want nil", got)
	}
}

func TestPlanDefaults(t *testing.T) {
	in := items("hello world")
	batches := Plan(in, 0, 0)
	if len(batches) != 1 || batches[0].TotalBatches != 1 {
		t.Fatalf("unexpected plan: %+v", batches)
	}
}
