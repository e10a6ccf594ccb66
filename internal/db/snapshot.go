package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evcraddock/rentroll/internal/store"
	"github.com/evcraddock/rentroll/internal/user"
)

// Resource names used as the first half of a cache entry key.
const (
	ResourceBuildings  = "buildings"
	ResourceUnits      = "units"
	ResourceAgreements = "agreements"
	ResourceStats      = "stats"
)

// Save replaces the stored snapshot with the current contents of st and marks
// it as owned by ownerID. With no owner nothing is kept.
func Save(ctx context.Context, db *sql.DB, ownerID string, st *store.Stores) error {
	if ownerID == "" {
		return Clear(ctx, db)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("rolling back snapshot", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	if err := setOwner(ctx, tx, ownerID); err != nil {
		return err
	}

	if err := saveCache(ctx, tx, ResourceBuildings, st.Buildings.Cache()); err != nil {
		return err
	}
	if err := saveCache(ctx, tx, ResourceUnits, st.Units.Cache()); err != nil {
		return err
	}
	if err := saveCache(ctx, tx, ResourceAgreements, st.Agreements.Cache()); err != nil {
		return err
	}
	if stats := st.Users.Stats(); stats != nil {
		if err := insert(ctx, tx, ResourceStats, "", stats); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func saveCache[T store.Entity](ctx context.Context, tx *sql.Tx, resource string, c *store.Cache[T]) error {
	for parent, items := range c.Snapshot() {
		if err := insert(ctx, tx, resource, parent, items); err != nil {
			return err
		}
	}
	return nil
}

func insert(ctx context.Context, tx *sql.Tx, resource, parent string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", resource, parent, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cache_entries (resource, parent_key, payload) VALUES (?, ?, ?)`,
		resource, parent, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving %s %q: %w", resource, parent, err)
	}
	return nil
}

// Load restores the snapshot saved by ownerID into st and reports whether it
// did. A snapshot saved by anyone else is dropped unread. Entries that fail to
// decode are skipped with a warning so one bad row does not discard the rest.
func Load(ctx context.Context, db *sql.DB, ownerID string, st *store.Stores) (bool, error) {
	saved, err := owner(ctx, db)
	if err != nil {
		return false, err
	}
	if ownerID == "" || saved != ownerID {
		slog.Debug("dropping snapshot of another user", "saved", saved, "current", ownerID)
		return false, Clear(ctx, db)
	}

	rows, err := db.QueryContext(ctx, `SELECT resource, parent_key, payload FROM cache_entries`)
	if err != nil {
		return false, fmt.Errorf("querying snapshot: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing snapshot rows", "error", cerr)
		}
	}()

	entries := map[string]map[string]string{}
	for rows.Next() {
		var resource, parent, payload string
		if err := rows.Scan(&resource, &parent, &payload); err != nil {
			return false, fmt.Errorf("scanning snapshot: %w", err)
		}
		if entries[resource] == nil {
			entries[resource] = map[string]string{}
		}
		entries[resource][parent] = payload
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating snapshot: %w", err)
	}

	restoreCache(ResourceBuildings, entries[ResourceBuildings], st.Buildings.Cache())
	restoreCache(ResourceUnits, entries[ResourceUnits], st.Units.Cache())
	restoreCache(ResourceAgreements, entries[ResourceAgreements], st.Agreements.Cache())

	if payload, ok := entries[ResourceStats][""]; ok {
		var stats user.DashboardStats
		if err := json.Unmarshal([]byte(payload), &stats); err != nil {
			slog.Warn("skipping cached stats", "error", err)
		} else {
			st.Users.SetStats(&stats)
		}
	}
	return true, nil
}

func restoreCache[T store.Entity](resource string, payloads map[string]string, c *store.Cache[T]) {
	lists := make(map[string][]T, len(payloads))
	for parent, payload := range payloads {
		var items []T
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			slog.Warn("skipping cached entry", "resource", resource, "parent", parent, "error", err)
			continue
		}
		lists[parent] = items
	}
	c.Restore(lists)
	slog.Debug("cache restored", "resource", resource, "lists", len(lists))
}

// Clear removes every stored entry and the owner mark.
func Clear(ctx context.Context, db *sql.DB) error {
	for _, q := range []string{`DELETE FROM cache_entries`, `DELETE FROM cache_meta`} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}
	}
	return nil
}
