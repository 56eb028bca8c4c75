// package validator provides the necessary utilities
// to validate request input and configuration before acting on it
package validator

import (
	"sort"
	"strings"
)

// Validator: type which contains a map of validation errors (error name : string -> error_description : string)
type Validator struct {
	Errors map[string]string
}

// New: return an instance of a validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid: returns true if there are no errors, otherwise false
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError: add a new error to the validator
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// CheckConstraint: Receives a constraint that evaluates to a boolean expression to validate
// false -> add error
// true -> skip
func (v *Validator) CheckConstraint(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Error joins every collected message, sorted by key, into a single string
func (v *Validator) Error() string {
	keys := make([]string, 0, len(v.Errors))
	for key := range v.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, key := range keys {
		messages = append(messages, key+": "+v.Errors[key])
	}
	return strings.Join(messages, "; ")
}

// MissingLanguageMessage is returned to callers that did not name a language
const MissingLanguageMessage = "Nedostaje parametar jezik (language) u upitu."

// ValidateLanguage checks the language query parameter of a search request
func ValidateLanguage(validator *Validator, language string) {
	validator.CheckConstraint(language != "", "language", MissingLanguageMessage)
}
