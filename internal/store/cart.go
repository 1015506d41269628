package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// LoadCart returns the persisted cart lines in insertion order.
func LoadCart(ctx context.Context, db *sql.DB) ([]model.CartLine, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, price, quantity FROM cart_lines ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.Name, &l.Price, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// SaveCart replaces the persisted cart with lines.
func SaveCart(ctx context.Context, db *sql.DB, lines []model.CartLine) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	for i, l := range lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines (position, name, price, quantity) VALUES (?, ?, ?, ?)`,
			i, l.Name, l.Price, l.Quantity,
		); err != nil {
			return fmt.Errorf("saving cart line %q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart: %w", err)
	}
	return nil
}
