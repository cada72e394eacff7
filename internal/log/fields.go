// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldRebuildID = "rebuild_id"
	FieldSkin      = "skin"
	FieldRuleset   = "ruleset"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Lookup fields
	FieldAssetKind = "asset_kind"
	FieldAssetName = "asset_name"
	FieldTier      = "tier"

	// Path fields
	FieldPath = "path"
)
