package visual_test

import (
	"context"
	"errors"
	"testing"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/visual"
)

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		intent   string
		text     string
		expected string
	}{
		{"plan", "", visual.TemplatePlanComparison},
		{"compare_plans", "", visual.TemplatePlanComparison},
		{"balance", "", visual.TemplateAccountSummary},
		{"recharge", "", visual.TemplateReceipt},
		{"bill", "", visual.TemplateReceipt},
		{"greeting", "", ""},
		{"", "here is a comparison of our plans", visual.TemplatePlanComparison},
		{"unknown", "your account balance is shown below", visual.TemplateAccountSummary},
		{"", "nice weather today", ""},
	}

	for _, tt := range tests {
		if got := visual.TemplateFor(tt.intent, tt.text); got != tt.expected {
			t.Errorf("TemplateFor(%q, %q) = %q, want %q", tt.intent, tt.text, got, tt.expected)
		}
	}
}

type fakeVisualBackend struct {
	err   error
	calls int
	last  backend.VisualRequest
}

func (f *fakeVisualBackend) GenerateVisual(ctx context.Context, req backend.VisualRequest) (*backend.VisualResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &backend.VisualResponse{Image: "base64-image", Type: req.VisualType}, nil
}

func TestRenderFetchesVisual(t *testing.T) {
	fake := &fakeVisualBackend{}
	generator := visual.NewGenerator(fake)

	v := generator.Render(context.Background(), "plan", "Here are your plan options", "en")
	if v == nil {
		t.Fatal("expected a visual for a plan reply")
	}
	if v.ImageData != "base64-image" || v.Kind != visual.TemplatePlanComparison {
		t.Fatalf("unexpected visual: %+v", v)
	}
	if fake.last.VisualType != visual.TemplatePlanComparison || fake.last.Language != "en" {
		t.Fatalf("unexpected request: %+v", fake.last)
	}
}

func TestRenderFailureIsSilent(t *testing.T) {
	fake := &fakeVisualBackend{err: errors.New("renderer crashed")}
	generator := visual.NewGenerator(fake)

	if v := generator.Render(context.Background(), "compare", "Comparing plans", "en"); v != nil {
		t.Fatalf("expected nil visual on failure, got %+v", v)
	}
}

func TestRenderSkipsNonVisualIntents(t *testing.T) {
	fake := &fakeVisualBackend{}
	generator := visual.NewGenerator(fake)

	if v := generator.Render(context.Background(), "greeting", "Hello there", "en"); v != nil {
		t.Fatalf("expected no visual, got %+v", v)
	}
	if fake.calls != 0 {
		t.Fatalf("backend should not be called for non-visual intents, got %d calls", fake.calls)
	}
}
