package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/ref"
	"github.com/evcraddock/rentroll/internal/store"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "cache.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "cache.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cache.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := d.Close(); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
		{
			name: "directory is a file",
			setup: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "blocker")
				if err := os.WriteFile(blocker, nil, 0o600); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return filepath.Join(blocker, "cache.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestMigrations(t *testing.T) {
	d := openTestDB(t)

	cols := tableColumns(t, d, "cache_entries")
	want := []string{"resource", "parent_key", "payload", "fetched_at"}
	if len(cols) != len(want) {
		t.Fatalf("got %d columns, want %d: %v", len(cols), len(want), cols)
	}
	for i, w := range want {
		if cols[i] != w {
			t.Errorf("column %d = %q, want %q", i, cols[i], w)
		}
	}
}

func TestMetaTable(t *testing.T) {
	d := openTestDB(t)

	cols := tableColumns(t, d, "cache_meta")
	if len(cols) != 2 || cols[0] != "key" || cols[1] != "value" {
		t.Errorf("cache_meta columns = %v", cols)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := d2.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(p) != "cache.db" {
		t.Errorf("expected filename cache.db, got %s", filepath.Base(p))
	}
	if dir := filepath.Base(filepath.Dir(p)); dir != "rr" {
		t.Errorf("expected directory rr, got %s", dir)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	src := seededStores()
	if err := Save(ctx, d, "o1", src); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := store.New(nil, store.LastDispatchedWins)
	loaded, err := Load(ctx, d, "o1", dst)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded {
		t.Fatal("snapshot of the same owner was not loaded")
	}

	bs, ok := dst.Buildings.List()
	if !ok || len(bs) != 1 || bs[0].Name != "Skyline" {
		t.Errorf("buildings = %+v (ok=%v)", bs, ok)
	}

	us, ok := dst.Units.List("b1")
	if !ok || len(us) != 2 {
		t.Fatalf("units = %+v (ok=%v)", us, ok)
	}
	if us[0].ID != "u1" || us[1].ID != "u2" {
		t.Errorf("unit order = %s, %s", us[0].ID, us[1].ID)
	}

	// An empty list stays distinct from an absent one.
	empty, ok := dst.Units.List("b2")
	if !ok || len(empty) != 0 {
		t.Errorf("units(b2) = %+v (ok=%v), want present and empty", empty, ok)
	}
	if _, ok := dst.Units.List("b3"); ok {
		t.Error("units(b3) should be absent")
	}

	a, ok := dst.Agreements.Find("a1")
	if !ok {
		t.Fatal("agreement a1 missing")
	}
	if a.Tenant.Value == nil || a.Tenant.Value.Name != "Asha" {
		t.Errorf("tenant not restored: %+v", a.Tenant)
	}
	if owner, ok := dst.Agreements.Owner(); !ok || len(owner) != 1 {
		t.Errorf("owner list = %+v (ok=%v)", owner, ok)
	}

	stats := dst.Users.Stats()
	if stats == nil || stats.TotalUnits != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if err := Save(ctx, d, "o1", seededStores()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := Save(ctx, d, "o1", store.New(nil, store.LastDispatchedWins)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if n := countEntries(t, d); n != 0 {
		t.Errorf("entries = %d, want 0", n)
	}
}

func TestLoadSkipsBadPayload(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(`INSERT INTO cache_meta (key, value) VALUES ('owner', 'o1')`); err != nil {
		t.Fatalf("insert owner: %v", err)
	}
	for _, row := range [][3]string{
		{ResourceBuildings, "", "not json"},
		{ResourceUnits, "b1", `[{"_id":"u1","unitNumber":"101","building":"b1"}]`},
	} {
		if _, err := d.Exec(`INSERT INTO cache_entries (resource, parent_key, payload) VALUES (?, ?, ?)`, row[0], row[1], row[2]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	st := store.New(nil, store.LastDispatchedWins)
	if _, err := Load(ctx, d, "o1", st); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := st.Buildings.List(); ok {
		t.Error("bad buildings payload should be skipped")
	}
	if us, ok := st.Units.List("b1"); !ok || len(us) != 1 {
		t.Errorf("units = %+v (ok=%v)", us, ok)
	}
}

func TestClear(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if err := Save(ctx, d, "o1", seededStores()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if countEntries(t, d) == 0 {
		t.Fatal("expected entries after save")
	}
	if err := Clear(ctx, d); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n := countEntries(t, d); n != 0 {
		t.Errorf("entries = %d, want 0", n)
	}
	if id, err := Owner(ctx, d); err != nil || id != "" {
		t.Errorf("owner after clear = %q (err=%v), want none", id, err)
	}
}

func TestLoadOtherOwnerDropsSnapshot(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if err := Save(ctx, d, "o1", seededStores()); err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		name  string
		owner string
	}{
		{"different user", "o2"},
		{"no user", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New(nil, store.LastDispatchedWins)
			loaded, err := Load(ctx, d, tt.owner, st)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded {
				t.Error("snapshot of o1 was loaded")
			}
			if _, ok := st.Buildings.List(); ok {
				t.Error("buildings restored for another user")
			}
			if n := countEntries(t, d); n != 0 {
				t.Errorf("entries = %d, want dropped", n)
			}
		})
	}
}

func TestSaveRecordsOwner(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if err := Save(ctx, d, "o1", seededStores()); err != nil {
		t.Fatalf("save o1: %v", err)
	}
	if err := Save(ctx, d, "o2", seededStores()); err != nil {
		t.Fatalf("save o2: %v", err)
	}
	id, err := Owner(ctx, d)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if id != "o2" {
		t.Errorf("owner = %q, want o2", id)
	}

	if err := Save(ctx, d, "", seededStores()); err != nil {
		t.Fatalf("anonymous save: %v", err)
	}
	if n := countEntries(t, d); n != 0 {
		t.Errorf("entries after anonymous save = %d, want 0", n)
	}
}

func seededStores() *store.Stores {
	st := store.New(nil, store.LastDispatchedWins)

	bc := st.Buildings.Cache()
	bc.Replace(bc.Begin(""), "", []building.Building{{ID: "b1", Name: "Skyline"}})

	uc := st.Units.Cache()
	uc.Replace(uc.Begin("b1"), "b1", []unit.Unit{
		{ID: "u1", Building: ref.To[building.Building]("b1"), UnitNumber: "101", Status: unit.StatusVacant},
		{ID: "u2", Building: ref.To[building.Building]("b1"), UnitNumber: "102", Status: unit.StatusOccupied},
	})
	uc.Replace(uc.Begin("b2"), "b2", nil)

	a := agreement.Agreement{
		ID:          "a1",
		Unit:        ref.To[unit.Unit]("u2"),
		Tenant:      ref.Of("t1", &user.User{ID: "t1", Name: "Asha"}),
		RentingType: agreement.ByUnit,
		Status:      agreement.StatusActive,
		IsActive:    true,
	}
	ac := st.Agreements.Cache()
	ac.Replace(ac.Begin("u2"), "u2", []agreement.Agreement{a})
	ac.Replace(ac.Begin(store.OwnerList), store.OwnerList, []agreement.Agreement{a})

	st.Users.SetStats(&user.DashboardStats{TotalBuildings: 1, TotalUnits: 2, OccupiedUnits: 1})
	return st
}

func countEntries(t *testing.T, d *sql.DB) int {
	t.Helper()
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&n); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// tableColumns returns column names for a table using PRAGMA table_info.
func tableColumns(t *testing.T, d *sql.DB, table string) []string {
	t.Helper()
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("pragma table_info(%s): %v", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.Errorf("close rows: %v", err)
		}
	}()

	var cols []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate columns: %v", err)
	}
	return cols
}
