package forms

import (
	"fmt"
	"slices"
	"strings"
)

var validChoiceTypes = []string{ChoiceRadio, ChoiceCheckbox, ChoiceDropDown}

// PreflightError lists request problems found before anything was sent.
type PreflightError struct {
	Problems []string
}

func (e *PreflightError) Error() string {
	return "invalid batch requests: " + strings.Join(e.Problems, ", ")
}

// Preflight checks the shape of a batch the way the API would, so obvious
// mistakes fail locally instead of costing a round trip. offset is the
// position of requests[0] in the full request list and only affects
// messages.
func Preflight(requests []Request, offset int) error {
	var problems []string
	add := func(i int, format string, args ...any) {
		problems = append(problems, fmt.Sprintf("Request %d: ", offset+i)+fmt.Sprintf(format, args...))
	}

	for i, r := range requests {
		switch r.Kind() {
		case "empty":
			add(i, "request has no operation")
			continue
		case "ambiguous":
			add(i, "request sets more than one operation")
			continue
		}

		if ci := r.CreateItem; ci != nil {
			if strings.TrimSpace(ci.Item.Title) == "" {
				add(i, "Item title is required")
			}
			if ci.Item.QuestionItem == nil {
				add(i, "Question structure is required")
			} else {
				q := ci.Item.QuestionItem.Question
				if q.payloads() != 1 {
					add(i, "Question must have a valid question type")
				}
				if cq := q.ChoiceQuestion; cq != nil {
					if !slices.Contains(validChoiceTypes, cq.Type) {
						add(i, "Invalid choice question type '%s'. Valid types: %s", cq.Type, strings.Join(validChoiceTypes, ", "))
					}
					if len(cq.Options) == 0 {
						add(i, "Choice question must have options")
					}
				}
			}
			if ci.Location.Index < 0 {
				add(i, "Valid location with index is required")
			}
		}

		if ui := r.UpdateFormInfo; ui != nil {
			if strings.TrimSpace(ui.UpdateMask) == "" {
				add(i, "updateMask is required for updateFormInfo")
			}
			if ui.Info == (Info{}) {
				add(i, "info object is required for updateFormInfo")
			}
		}
	}

	if len(problems) > 0 {
		return &PreflightError{Problems: problems}
	}
	return nil
}
