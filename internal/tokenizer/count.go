package tokenizer

import (
	"errors"
	"unicode/utf8"
)

var (
	errNilCounter  = errors.New("nil tokenizer counter")
	errInvalidUTF8 = errors.New("text is not valid UTF-8")
)

// CountDocument counts the tokens of a rendered document.
func CountDocument(counter Counter, document string) (int, error) {
	if counter == nil {
		return 0, errNilCounter
	}
	if !utf8.ValidString(document) {
		return 0, errInvalidUTF8
	}
	return counter.CountString(document)
}
