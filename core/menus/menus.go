// Package menus defines the catalog collaborator contract and the menu item
// model the engine attaches to streamed messages.
package menus

import (
	"context"
	"errors"
)

// ErrItemNotFound is returned by catalog lookups for unknown item identifiers.
var ErrItemNotFound = errors.New("menu item not found")

// Item is a single catalog entry with the display metadata the server streams
// alongside it.
type Item struct {
	ID          string
	Name        string
	Description string
	// PriceCents is the base price in the smallest currency unit.
	PriceCents int
	Currency   string
	ImageURL   string
	Category   string
	Tags       []string
}

// Reference points a message at a catalog entry. DisplayName and ImageURL are
// carried as streamed by the server so the transcript can render without a
// catalog round trip.
type Reference struct {
	CatalogID   string
	DisplayName string
	ImageURL    string
	PriceCents  int
}

// Catalog resolves catalog identifiers to full items. Implementations are
// external to the engine.
type Catalog interface {
	Resolve(ctx context.Context, catalogID string) (*Item, error)
}
