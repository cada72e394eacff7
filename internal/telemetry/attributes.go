// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the daemon.
const (
	// Resolution attributes
	ResolveRulesetKey = "resolve.ruleset"
	ResolveKindKey    = "resolve.kind"
	ResolveNameKey    = "resolve.name"
	ResolveTierKey    = "resolve.tier"
	ResolveOriginKey  = "resolve.origin"

	// Chain attributes
	ChainRulesetKey = "chain.ruleset"
	ChainSourcesKey = "chain.sources"

	// Skin attributes
	SkinSlugKey   = "skin.slug"
	SkinFormatKey = "skin.format"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ResolveAttributes creates span attributes for one asset resolution.
func ResolveAttributes(ruleset, kind, name string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ResolveRulesetKey, ruleset),
		attribute.String(ResolveKindKey, kind),
		attribute.String(ResolveNameKey, name),
	}
}

// ResultAttributes annotates a span with how a resolution was served.
func ResultAttributes(tier int, origin string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ResolveTierKey, tier),
		attribute.String(ResolveOriginKey, origin),
	}
}

// ChainAttributes creates span attributes for a chain rebuild.
func ChainAttributes(ruleset string, sources int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ChainRulesetKey, ruleset),
		attribute.Int(ChainSourcesKey, sources),
	}
}

// SkinAttributes creates span attributes for one skin.
func SkinAttributes(slug, format string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if slug != "" {
		attrs = append(attrs, attribute.String(SkinSlugKey, slug))
	}
	if format != "" {
		attrs = append(attrs, attribute.String(SkinFormatKey, format))
	}
	return attrs
}

// ErrorAttributes creates error span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
