package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// MockClient answers every prompt with the same registration form, titled
// after the request. It needs no network and no key.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (MockClient) CompleteWithSystem(_ context.Context, _, userPrompt string) (string, error) {
	title := mockTitle(userPrompt)
	doc := map[string]any{
		"title":       title,
		"description": "Please fill out this form.",
		"language":    "en",
		"fields": []any{
			map[string]any{"id": "full_name", "label": "Full Name", "type": "text", "required": true},
			map[string]any{"id": "email", "label": "Email Address", "type": "email", "required": true},
			map[string]any{"id": "phone", "label": "Phone Number", "type": "phone"},
			map[string]any{"id": "attendance", "label": "Will you attend?", "type": "radio", "required": true,
				"options": []any{"Yes", "No", "Maybe"}},
			map[string]any{"id": "comments", "label": "Comments", "type": "textarea"},
		},
		"settings": map[string]any{
			"collect_email":              false,
			"allow_multiple_submissions": false,
			"confirmation_message":       "Thank you for your response!",
		},
	}
	out, err := json.Marshal(doc)
	return string(out), err
}

// mockTitle pulls the quoted request out of a formatted user prompt.
func mockTitle(userPrompt string) string {
	if i := strings.Index(userPrompt, `"`); i >= 0 {
		if j := strings.Index(userPrompt[i+1:], `"`); j > 0 {
			return strings.TrimSpace(userPrompt[i+1 : i+1+j])
		}
	}
	if s := strings.TrimSpace(userPrompt); s != "" {
		return s
	}
	return "Untitled Form"
}
