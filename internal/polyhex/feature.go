package polyhex

import (
	"fmt"
	"slices"
)

// Feature is a terrain or slot label carried by a cell edge or centre.
type Feature string

// Token is a game piece placed on a cell centre.
type Token string

// Placeholder is the label of anything not yet known: an unplaced side of a
// border placeholder, or the token slot of a free cell.
const Placeholder = "placeholder"

// Compatibility maps a token to the centre features that accept it.
// It is external configuration and is never mutated by the core.
type Compatibility map[Token][]Feature

// Allows reports whether token may be placed on a cell with the given centre.
func (c Compatibility) Allows(token Token, centre Feature) bool {
	return slices.Contains(c[token], centre)
}

// Encoding is the opaque feature→code and token→code lookup used when a
// graph is exported as numeric vectors.
type Encoding struct {
	Features map[Feature]int `yaml:"features" json:"features"`
	Tokens   map[Token]int   `yaml:"tokens" json:"tokens"`
}

// Feature returns the numeric code of f.
func (e Encoding) Feature(f Feature) (int, error) {
	code, ok := e.Features[f]
	if !ok {
		return 0, fmt.Errorf("%w: no encoding for feature %q", ErrValidation, f)
	}
	return code, nil
}

// Token returns the numeric code of t.
func (e Encoding) Token(t Token) (int, error) {
	code, ok := e.Tokens[t]
	if !ok {
		return 0, fmt.Errorf("%w: no encoding for token %q", ErrValidation, t)
	}
	return code, nil
}
