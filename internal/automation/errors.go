package automation

import "errors"

// Domain errors for the automation package.
var (
	// ErrInvalidOperator is returned when a rule's condition operator is
	// not part of the comparison vocabulary.
	ErrInvalidOperator = errors.New("automation: invalid condition operator")

	// ErrInvalidPolicy is returned when a type change is resolved with an
	// unknown resolution policy.
	ErrInvalidPolicy = errors.New("automation: invalid resolution policy")

	// ErrNotFound is returned when a rule id does not exist in an index.
	ErrNotFound = errors.New("automation: rule not found")
)
