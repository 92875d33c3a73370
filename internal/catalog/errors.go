package catalog

import "fmt"

// InvalidLanguageError reports a token that is neither a known language nor
// an alias. Surfaced to the user; never fatal to the session.
type InvalidLanguageError struct {
	Token      string
	Suggestion string
}

func (e *InvalidLanguageError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid language: `%s` (did you mean `%s`?)", e.Token, e.Suggestion)
	}
	return fmt.Sprintf("invalid language: `%s`", e.Token)
}

// NotAnAliasError reports an alias operation on a name that is a canonical
// language or unknown.
type NotAnAliasError struct {
	Name string
}

func (e *NotAnAliasError) Error() string {
	return fmt.Sprintf("`%s` is not an alias", e.Name)
}
