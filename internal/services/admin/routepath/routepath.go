// Package routepath centralizes the admin surface's route constants so
// handlers and tests never drift on raw strings.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Characters         = "/characters"
	Payments           = "/payments"
	PaymentsStatistics = "/payments/statistics"
	InventoryExport    = "/inventory/export"
	ProfilePrefix      = "/profile/"
)

// Profile builds the public profile path for a character id.
func Profile(characterID string) string {
	return ProfilePrefix + escapeSegment(characterID)
}

func escapeSegment(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}
