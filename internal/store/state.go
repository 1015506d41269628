package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// Admin state keys, one per editable collection.
const (
	stateKeyProducts    = "products"
	stateKeyHeroSlides  = "heroSlides"
	stateKeyInspiration = "inspirationItems"
)

// LoadState reads the admin state. A missing or unparsable collection
// loads as empty so a corrupt row never blocks the panel.
func LoadState(ctx context.Context, db *sql.DB) (model.State, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM admin_state`)
	if err != nil {
		return model.State{}, fmt.Errorf("loading admin state: %w", err)
	}
	defer rows.Close()

	state := model.NewState()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return model.State{}, fmt.Errorf("scanning admin state: %w", err)
		}

		var target any
		switch key {
		case stateKeyProducts:
			target = &state.Products
		case stateKeyHeroSlides:
			target = &state.HeroSlides
		case stateKeyInspiration:
			target = &state.InspirationItems
		default:
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			slog.Warn("discarding unreadable admin state", "key", key, "error", err)
		}
	}
	if err := rows.Err(); err != nil {
		return model.State{}, fmt.Errorf("loading admin state: %w", err)
	}

	// A stored JSON null decodes to a nil collection.
	return state.Clone(), nil
}

// SaveState writes all three collections in one transaction.
func SaveState(ctx context.Context, db *sql.DB, state model.State) error {
	values := map[string]any{
		stateKeyProducts:    state.Products,
		stateKeyHeroSlides:  state.HeroSlides,
		stateKeyInspiration: state.InspirationItems,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO admin_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, string(data),
		); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing admin state: %w", err)
	}
	return nil
}
