package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("llm: no valid JSON found in response")

var (
	fencePattern  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractJSON finds the JSON object in a model reply that may wrap it in
// prose or markdown fences.
func ExtractJSON(reply string) ([]byte, error) {
	reply = strings.TrimSpace(reply)
	if json.Valid([]byte(reply)) && strings.HasPrefix(reply, "{") {
		return []byte(reply), nil
	}
	if m := fencePattern.FindStringSubmatch(reply); m != nil && json.Valid([]byte(m[1])) {
		return []byte(m[1]), nil
	}
	if m := objectPattern.FindString(reply); m != "" {
		return []byte(m), nil
	}
	return nil, ErrNoJSON
}
