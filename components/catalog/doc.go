// Package catalog provides a searchable add-on catalog, search helpers, and a
// small net/http handler that returns JSON candidates for the form-set
// autocomplete.
//
// The default handler responds to GET and HEAD requests and supports query,
// limit and category-exclusion parameters. The backing data is loaded from
// the embedded catalog under data/addons.yaml.
package catalog
