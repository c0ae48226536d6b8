// Package search implements formset.SearchProvider over HTTP. Requests are
// plain GETs against the configured endpoint carrying the term under the
// search field name and, when requested, the category-exclusion flag. The
// response body is a JSON array of {key, label, icon} objects.
//
// Responses can be cached in an expiring LRU keyed by the full request URL.
package search
