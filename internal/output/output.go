// Package output renders assembled project contexts.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/temirov/ctxload/internal/project"
)

const (
	indentPrefix = ""
	indentSpacer = "    "
)

// ErrNothingToRender is returned when no context was supplied.
var ErrNothingToRender = errors.New("no project context to render")

// RenderJSON pretty-prints the contexts. A single context renders as an object and
// several render as an array in the given order. The result ends with a newline and
// characters such as & < > are written literally.
func RenderJSON(contexts []project.Context) (string, error) {
	var value any
	switch len(contexts) {
	case 0:
		return "", ErrNothingToRender
	case 1:
		value = contexts[0]
	default:
		value = contexts
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if jsonEncodeError := encoder.Encode(value); jsonEncodeError != nil {
		return "", fmt.Errorf("encode project context: %w", jsonEncodeError)
	}
	return buffer.String(), nil
}
