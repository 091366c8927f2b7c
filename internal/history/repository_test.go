package history

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/180254/razerctl/migrations"

	"github.com/180254/razerctl/internal/infrastructure/database"
)

// openTestRepo creates a migrated temporary database and a repository on it.
func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "razerctl.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func TestCreateAndFinishRun(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	run := &Run{DryRun: true, DevicesSeen: 2}
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("CreateRun() did not assign an ID")
	}
	if run.StartedAt.IsZero() {
		t.Fatal("CreateRun() did not stamp StartedAt")
	}

	run.ChangesApplied = 3
	if err := repo.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	if run.FinishedAt == nil {
		t.Fatal("FinishRun() did not stamp FinishedAt")
	}

	runs, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}
	if !got.DryRun {
		t.Error("DryRun = false, want true")
	}
	if got.DevicesSeen != 2 || got.ChangesApplied != 3 {
		t.Errorf("counters = (%d, %d), want (2, 3)", got.DevicesSeen, got.ChangesApplied)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt not persisted")
	}
}

func TestRecordAndListChanges(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	run := &Run{}
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	changes := []*Change{
		{
			RunID:        run.ID,
			DeviceSerial: "PM1",
			DeviceName:   "Razer Viper Ultimate",
			Property:     "dpi",
			Previous:     "800x800",
			Applied:      "1200x1200",
		},
		{
			RunID:        run.ID,
			DeviceSerial: "PM1",
			DeviceName:   "Razer Viper Ultimate",
			Property:     "idle_time",
			Previous:     "?",
			Applied:      "300",
		},
	}
	for _, c := range changes {
		if err := repo.RecordChange(ctx, c); err != nil {
			t.Fatalf("RecordChange(%s) error = %v", c.Property, err)
		}
		if c.ID == "" {
			t.Fatalf("RecordChange(%s) did not assign an ID", c.Property)
		}
	}

	got, err := repo.ListChanges(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("changes = %d, want 2", len(got))
	}
	if got[0].Property != "dpi" || got[0].Applied != "1200x1200" {
		t.Errorf("first change = %s %s, want dpi 1200x1200", got[0].Property, got[0].Applied)
	}
	if got[1].Previous != "?" {
		t.Errorf("second change previous = %q, want %q", got[1].Previous, "?")
	}

	// Changes for an unknown run are empty, not an error.
	none, err := repo.ListChanges(ctx, "run-none")
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("changes for unknown run = %d, want 0", len(none))
	}
}

func TestListRuns_Limit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.CreateRun(ctx, &Run{}); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
	}

	runs, err := repo.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("runs = %d, want 3", len(runs))
	}

	// A non-positive limit falls back to the default page size.
	runs, err = repo.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("runs = %d, want 5", len(runs))
	}
}
