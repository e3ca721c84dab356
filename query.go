package quarry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// QueryWithParameters pairs a query document with the parameter values it
// references. Pagination planning emits a sequence of these, each of which
// can be handed independently to a backend compiler.
type QueryWithParameters struct {
	// Query is the query document. Treated as immutable by everything in
	// this module; components that need a modified query copy it first.
	Query *ast.QueryDocument

	// Parameters maps parameter names (without the "$" prefix) to values.
	Parameters map[string]any
}

// String returns the formatted query text. Formatting is deterministic, so
// two equal documents always render identically.
func (q QueryWithParameters) String() string {
	return FormatQuery(q.Query)
}

// FormatQuery renders a query document back to its canonical text form.
func FormatQuery(doc *ast.QueryDocument) string {
	var sb strings.Builder
	formatter.NewFormatter(&sb).FormatQueryDocument(doc)
	return sb.String()
}

// ParseError reports that query text could not be parsed into a document.
type ParseError struct {
	// Err is the underlying parser error, carrying source locations.
	Err *gqlerror.Error
}

// Error returns the error string.
func (e *ParseError) Error() string {
	return fmt.Sprintf("quarry: parsing query: %s", e.Err.Message)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e)
}

// ParseQuery parses query text into an immutable query document. Malformed
// input fails with a *ParseError.
func ParseQuery(text string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		var gqlErr *gqlerror.Error
		if errors.As(err, &gqlErr) {
			return nil, &ParseError{Err: gqlErr}
		}
		return nil, &ParseError{Err: gqlerror.Wrap(err)}
	}
	return doc, nil
}
