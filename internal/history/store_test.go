package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phishscan/phishscan/internal/model"
)

// setupTestStore creates a temporary history store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// testReport builds a completed report for storage tests.
func testReport(url string, final model.Verdict) *model.ScanReport {
	return &model.ScanReport{
		URL:          url,
		FinalVerdict: final,
		Details: model.SourceVerdicts{
			Model:        final,
			SafeBrowsing: final,
			VirusTotal:   model.VerdictSuspicious,
		},
		ModelProbability: 0.87,
		ModelVersion:     "2025-08-01",
		ContentFetched:   true,
		CheckedAt:        time.Now().UTC(),
		DurationMS:       321,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "newdir", "subdir", "history.db")
		store, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "missing.db")
		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		if _, err := Open(dbPath, opts); err == nil {
			t.Error("expected error for missing database, got nil")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "history.db")

		store, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		if _, err := store.Save(context.Background(), testReport("http://example.com", model.VerdictLegitimate)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		reopened, err := Open(dbPath, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer reopened.Close()

		entry, err := reopened.Latest(context.Background(), "http://example.com")
		if err != nil {
			t.Fatalf("failed to query reopened store: %v", err)
		}
		if entry == nil {
			t.Fatal("expected stored check to survive reopen")
		}
	})
}

func TestStoreSaveAndLatest(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	report := testReport("http://paypal-secure-login.verify-account.tk/reset", model.VerdictPhishing)
	id, err := store.Save(ctx, report)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive row ID, got %d", id)
	}

	entry, err := store.Latest(ctx, report.URL)
	if err != nil {
		t.Fatalf("failed to get latest: %v", err)
	}
	if entry == nil {
		t.Fatal("expected an entry, got nil")
	}

	got := entry.Report
	if got.URL != report.URL {
		t.Errorf("URL: got %q, want %q", got.URL, report.URL)
	}
	if got.FinalVerdict != model.VerdictPhishing {
		t.Errorf("FinalVerdict: got %v, want %v", got.FinalVerdict, model.VerdictPhishing)
	}
	if got.Details.Model != model.VerdictPhishing {
		t.Errorf("Details.Model: got %v, want %v", got.Details.Model, model.VerdictPhishing)
	}
	if got.Details.VirusTotal != model.VerdictSuspicious {
		t.Errorf("Details.VirusTotal: got %v, want %v", got.Details.VirusTotal, model.VerdictSuspicious)
	}
	if got.ModelProbability != report.ModelProbability {
		t.Errorf("ModelProbability: got %v, want %v", got.ModelProbability, report.ModelProbability)
	}
	if got.ModelVersion != report.ModelVersion {
		t.Errorf("ModelVersion: got %q, want %q", got.ModelVersion, report.ModelVersion)
	}
	if !got.ContentFetched {
		t.Error("ContentFetched: got false, want true")
	}
	if got.DurationMS != report.DurationMS {
		t.Errorf("DurationMS: got %d, want %d", got.DurationMS, report.DurationMS)
	}
	if got.CheckedAt.IsZero() {
		t.Error("CheckedAt: got zero time")
	}
}

func TestStoreLatestUnknownURL(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	entry, err := store.Latest(context.Background(), "http://never-checked.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil entry for unknown URL, got %+v", entry)
	}
}

func TestStoreTimeline(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()
	url := "http://example.com"

	// Three checks at distinct times, oldest first.
	verdicts := []model.Verdict{
		model.VerdictLegitimate,
		model.VerdictSuspicious,
		model.VerdictPhishing,
	}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, v := range verdicts {
		report := testReport(url, v)
		report.CheckedAt = base.Add(time.Duration(i) * time.Hour)
		if _, err := store.Save(ctx, report); err != nil {
			t.Fatalf("failed to save report %d: %v", i, err)
		}
	}
	// An unrelated URL must not leak into the timeline.
	if _, err := store.Save(ctx, testReport("http://other.example", model.VerdictLegitimate)); err != nil {
		t.Fatalf("failed to save unrelated report: %v", err)
	}

	timeline, err := store.Timeline(ctx, url, 0)
	if err != nil {
		t.Fatalf("failed to query timeline: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("timeline length: got %d, want 3", len(timeline))
	}

	// Newest first.
	wantOrder := []model.Verdict{
		model.VerdictPhishing,
		model.VerdictSuspicious,
		model.VerdictLegitimate,
	}
	for i, want := range wantOrder {
		if got := timeline[i].Report.FinalVerdict; got != want {
			t.Errorf("timeline[%d]: got %v, want %v", i, got, want)
		}
	}

	limited, err := store.Timeline(ctx, url, 2)
	if err != nil {
		t.Fatalf("failed to query limited timeline: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited timeline length: got %d, want 2", len(limited))
	}
}

func TestStoreListURLs(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	urls := []string{
		"http://b.example",
		"http://a.example",
		"http://b.example", // duplicate check of the same URL
	}
	for _, u := range urls {
		if _, err := store.Save(ctx, testReport(u, model.VerdictLegitimate)); err != nil {
			t.Fatalf("failed to save %s: %v", u, err)
		}
	}

	got, err := store.ListURLs(ctx)
	if err != nil {
		t.Fatalf("failed to list URLs: %v", err)
	}

	want := []string{"http://a.example", "http://b.example"}
	if len(got) != len(want) {
		t.Fatalf("URL count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("urls[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDirection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		older model.Verdict
		newer model.Verdict
		want  string
	}{
		{"legitimate to phishing worsens", model.VerdictLegitimate, model.VerdictPhishing, DirectionWorsened},
		{"legitimate to suspicious worsens", model.VerdictLegitimate, model.VerdictSuspicious, DirectionWorsened},
		{"suspicious to phishing worsens", model.VerdictSuspicious, model.VerdictPhishing, DirectionWorsened},
		{"phishing to legitimate improves", model.VerdictPhishing, model.VerdictLegitimate, DirectionImproved},
		{"phishing to suspicious improves", model.VerdictPhishing, model.VerdictSuspicious, DirectionImproved},
		{"same verdict unchanged", model.VerdictSuspicious, model.VerdictSuspicious, DirectionUnchanged},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Direction(tc.older, tc.newer); got != tc.want {
				t.Errorf("Direction(%v, %v): got %q, want %q", tc.older, tc.newer, got, tc.want)
			}
		})
	}
}

func TestChanges(t *testing.T) {
	t.Parallel()

	t.Run("fewer than two entries yields none", func(t *testing.T) {
		t.Parallel()

		if got := Changes(nil); got != nil {
			t.Errorf("expected nil for empty timeline, got %v", got)
		}

		one := []Entry{{Report: *testReport("http://example.com", model.VerdictLegitimate)}}
		if got := Changes(one); got != nil {
			t.Errorf("expected nil for single entry, got %v", got)
		}
	})

	t.Run("walks transitions oldest first", func(t *testing.T) {
		t.Parallel()

		// Newest first, as Timeline returns.
		timeline := []Entry{
			{ID: 3, Report: *testReport("http://example.com", model.VerdictPhishing)},
			{ID: 2, Report: *testReport("http://example.com", model.VerdictLegitimate)},
			{ID: 1, Report: *testReport("http://example.com", model.VerdictLegitimate)},
		}

		changes := Changes(timeline)
		if len(changes) != 2 {
			t.Fatalf("changes length: got %d, want 2", len(changes))
		}

		if changes[0].Direction != DirectionUnchanged {
			t.Errorf("first change: got %q, want %q", changes[0].Direction, DirectionUnchanged)
		}
		if changes[1].Direction != DirectionWorsened {
			t.Errorf("second change: got %q, want %q", changes[1].Direction, DirectionWorsened)
		}
		if changes[1].From.ID != 2 || changes[1].To.ID != 3 {
			t.Errorf("second change IDs: got %d->%d, want 2->3", changes[1].From.ID, changes[1].To.ID)
		}
	})
}
