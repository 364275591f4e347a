package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// PostgresCategoryCatalog reads category names from the categories table
type PostgresCategoryCatalog struct {
	pool Pool
}

// NewPostgresCategoryCatalog creates a catalog backed by PostgreSQL
func NewPostgresCategoryCatalog(pool Pool) *PostgresCategoryCatalog {
	return &PostgresCategoryCatalog{pool: pool}
}

// ListAll returns every category name in alphabetical order
func (c *PostgresCategoryCatalog) ListAll(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return names, nil
}

// DefaultCategories mirrors the rows seeded by the categories migration
var DefaultCategories = []string{
	"Bills", "Education", "Entertainment", "Food", "Health",
	"Other", "Shopping", "Transport", "Travel",
}

// StaticCategoryCatalog serves a fixed list, used with the memory store
type StaticCategoryCatalog struct {
	names []string
}

// NewStaticCategoryCatalog copies, trims, de-duplicates and sorts names
func NewStaticCategoryCatalog(names ...string) *StaticCategoryCatalog {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return &StaticCategoryCatalog{names: out}
}

// ListAll returns a copy of the catalog in alphabetical order
func (c *StaticCategoryCatalog) ListAll(ctx context.Context) ([]string, error) {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out, nil
}
