package parser

import "errors"

// ErrInvalidInput mirrors the root package's sentinel of the same name
// (spec §7). It is declared locally to avoid parser importing the root
// searchcore package, which itself imports parser to build Core; Core.Parse
// wraps this back into searchcore.ErrInvalidInput with errors.Is-compatible
// chaining.
var ErrInvalidInput = errors.New("parser: invalid input")
