package formset

import "strconv"

const (
	// DefaultPrefix matches the server-side form-set default.
	DefaultPrefix = "form"
	// DefaultPlaceholder is the token replaced by the slot index when the
	// extra-entry template is rendered.
	DefaultPlaceholder = "__prefix__"

	totalFormsField   = "TOTAL_FORMS"
	initialFormsField = "INITIAL_FORMS"
	deleteField       = "DELETE"
	idPrefix          = "id_"
)

// FieldName returns the slot field name "{prefix}-{index}-{field}".
func FieldName(prefix string, index int, field string) string {
	return slotPrefix(prefix, index) + field
}

// DeleteFieldName returns the name of the per-slot deletion checkbox.
func DeleteFieldName(prefix string, index int) string {
	return FieldName(prefix, index, deleteField)
}

// TotalFormsName returns the name of the "total forms" counter field.
func TotalFormsName(prefix string) string {
	return prefix + "-" + totalFormsField
}

// InitialFormsName returns the name of the "initial forms" counter field.
func InitialFormsName(prefix string) string {
	return prefix + "-" + initialFormsField
}

// FieldID returns the element id conventionally paired with a field name.
func FieldID(name string) string {
	return idPrefix + name
}

func slotPrefix(prefix string, index int) string {
	return prefix + "-" + strconv.Itoa(index) + "-"
}
