package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attributes recorded by the listing engine.
const (
	AttrListingSort     = attribute.Key("listing.sort")
	AttrListingRadiusKm = attribute.Key("listing.radius_km")
	AttrListingPage     = attribute.Key("listing.page")
	AttrListingSize     = attribute.Key("listing.size")
	AttrListingCacheHit = attribute.Key("listing.cache_hit")
	AttrListingTotal    = attribute.Key("listing.total_elements")
	AttrListingTrunc    = attribute.Key("listing.truncated")
)
