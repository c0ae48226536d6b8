// Package openapi derives form-set controller configuration from OpenAPI 3
// documents. An array property of an operation's request body marked with
// the x-formset extension becomes one form-set: the extension carries the
// controller settings, and missing naming settings are inferred from the
// property and its item schema.
package openapi
