package pages

import (
	"context"
	"testing"

	"github.com/tidwall/gjson"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
)

func TestLoadSeedsEveryDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	p := New(store, nil)
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	keys := []string{
		KeyHome, KeyAbout, KeyApps, KeyServices, KeyCaseStudies, KeyApplication,
		KeyInvestment, KeyLegal, KeyContactSettings, KeyPricingPlans, KeySiteSettings,
	}
	for _, key := range keys {
		if _, err := store.Get(ctx, key); err != nil {
			t.Fatalf("expected %s persisted: %v", key, err)
		}
	}
	if got := len(p.Entries()); got != len(keys) {
		t.Fatalf("entries = %d, want %d", got, len(keys))
	}
}

func TestEntryPatchRawUpdatesTypedDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New(memory.New(nil), nil)
	entry, ok := p.Entry("about")
	if !ok {
		t.Fatal("expected about entry")
	}
	if err := entry.Doc.PatchRaw(ctx, []byte(`{"title":"Who we are"}`)); err != nil {
		t.Fatalf("patch: %v", err)
	}
	about, err := p.About.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if about.Title != "Who we are" || about.Mission != DefaultAbout().Mission {
		t.Fatalf("about = %+v", about)
	}
	raw, err := entry.Doc.Raw(ctx)
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if got := gjson.GetBytes(raw, "title").String(); got != "Who we are" {
		t.Fatalf("raw title = %q", got)
	}
	if _, ok := p.Entry("missing"); ok {
		t.Fatal("unexpected entry for unknown slug")
	}
}

func TestPricingPlansValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New(memory.New(nil), nil)

	tests := []struct {
		name    string
		partial string
	}{
		{name: "no plans", partial: `{"plans":[]}`},
		{name: "blank id", partial: `{"plans":[{"id":" ","name":"X"}]}`},
		{name: "duplicate id", partial: `{"plans":[{"id":"a"},{"id":"a"}]}`},
		{name: "negative price", partial: `{"plans":[{"id":"a","monthlyPriceCents":-1}]}`},
	}
	for _, tc := range tests {
		if _, err := p.PricingPlans.Patch(ctx, []byte(tc.partial)); apperrors.FieldOf(err) != "plans" {
			t.Fatalf("%s: err = %v, want plans field error", tc.name, err)
		}
	}
}

func TestPlanLookup(t *testing.T) {
	t.Parallel()

	plans := DefaultPricingPlans()
	lowest, ok := plans.Lowest()
	if !ok || lowest.ID != "free" {
		t.Fatalf("lowest = %+v, %v", lowest, ok)
	}
	if plan, ok := plans.Find("pro"); !ok || plan.Rank != 1 {
		t.Fatalf("find pro = %+v, %v", plan, ok)
	}
	if _, ok := (PricingPlans{}).Lowest(); ok {
		t.Fatal("expected no lowest plan")
	}
}

func TestSiteSettingsRequireName(t *testing.T) {
	t.Parallel()

	p := New(memory.New(nil), nil)
	_, err := p.SiteSettings.Patch(context.Background(), []byte(`{"siteName":""}`))
	if apperrors.FieldOf(err) != "siteName" {
		t.Fatalf("err = %v, want siteName field error", err)
	}
}
