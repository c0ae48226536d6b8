// Package html renders form-sets as HTML following the Django form-set
// convention: management fields, one element per entry with the hidden value
// field and DELETE checkbox, the extra-entry template with its placeholder,
// and the autocomplete input. It also renders suggestion lists.
//
// Templates are pongo2 files embedded under templates/. A go-theme renderer
// configuration can swap individual partials, inject CSS variables and point
// at a themed stylesheet. Entry markup that did not come from the built-in
// templates is passed through a bluemonday policy.
package html
