package apperror

// DetailErrors is the Details key holding FieldErrors of a validation error.
const DetailErrors = "errors"

// FieldErrors maps a field name to one of:
//   - string: a localized message
//   - FieldErrors: errors of an embedded document
//   - []FieldErrors: one entry per list element, empty where the element is valid
type FieldErrors map[string]any

// Set records a message for field, replacing any previous one.
func (f FieldErrors) Set(field, message string) {
	f[field] = message
}

// SetNested records errors of an embedded document if there are any.
func (f FieldErrors) SetNested(field string, nested FieldErrors) {
	if len(nested) > 0 {
		f[field] = nested
	}
}

// SetList records per-element errors of a list field.
// Nothing is recorded when every element is valid.
func (f FieldErrors) SetList(field string, items []FieldErrors) {
	if AnyErrors(items) {
		f[field] = items
	}
}

// Has reports whether field has an error recorded.
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// Empty reports whether no error was recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Message returns the message at the given path of field names and list indexes,
// e.g. Message("items", 0, "fulfillments", 1, "deliveredQuantity").
func (f FieldErrors) Message(path ...any) (string, bool) {
	var cur any = f
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(FieldErrors)
			if !ok {
				return "", false
			}
			if cur, ok = m[key]; !ok {
				return "", false
			}
		case int:
			list, ok := cur.([]FieldErrors)
			if !ok || key < 0 || key >= len(list) {
				return "", false
			}
			cur = list[key]
		default:
			return "", false
		}
	}
	msg, ok := cur.(string)
	return msg, ok
}

// AnyErrors reports whether at least one element of items has errors.
func AnyErrors(items []FieldErrors) bool {
	for _, item := range items {
		if len(item) > 0 {
			return true
		}
	}
	return false
}

// NewValidationFields creates the aggregate validation error carrying
// every field error found.
func NewValidationFields(message string, errs FieldErrors) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{DetailErrors: errs},
	}
}

// FieldErrorsOf extracts FieldErrors from a validation error chain.
func FieldErrorsOf(err error) (FieldErrors, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != CodeValidation {
		return nil, false
	}
	errs, ok := appErr.Details[DetailErrors].(FieldErrors)
	return errs, ok
}
