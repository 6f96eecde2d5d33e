package forms

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Response is one form submission with answers flattened per question id.
type Response struct {
	ID          string `json:"id"`
	SubmittedAt string `json:"submitted_at"`
	CreatedAt   string `json:"created_at"`
	// Answers maps question id to a string (text answers joined with ", "),
	// a []string of file names, or a float64 grade.
	Answers map[string]any `json:"answers"`
}

type rawResponses struct {
	Responses []struct {
		ResponseID        string               `json:"responseId"`
		CreateTime        string               `json:"createTime"`
		LastSubmittedTime string               `json:"lastSubmittedTime"`
		Answers           map[string]rawAnswer `json:"answers"`
	} `json:"responses"`
	NextPageToken string `json:"nextPageToken"`
}

type rawAnswer struct {
	TextAnswers *struct {
		Answers []struct {
			Value string `json:"value"`
		} `json:"answers"`
	} `json:"textAnswers"`
	FileUploadAnswers *struct {
		Answers []struct {
			FileID   string `json:"fileId"`
			FileName string `json:"fileName"`
		} `json:"answers"`
	} `json:"fileUploadAnswers"`
	Grade *struct {
		Score float64 `json:"score"`
	} `json:"grade"`
}

// Responses lists every response of formID, following page tokens.
func (c *Client) Responses(ctx context.Context, formID string) ([]Response, error) {
	var out []Response
	pageToken := ""
	for {
		path := "/forms/" + url.PathEscape(formID) + "/responses"
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}
		var page rawResponses
		if err := c.do(ctx, c.single, "responses", http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Responses {
			out = append(out, Response{
				ID:          r.ResponseID,
				SubmittedAt: r.LastSubmittedTime,
				CreatedAt:   r.CreateTime,
				Answers:     formatAnswers(r.Answers),
			})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

func formatAnswers(answers map[string]rawAnswer) map[string]any {
	out := make(map[string]any, len(answers))
	for qid, a := range answers {
		switch {
		case a.TextAnswers != nil:
			values := make([]string, len(a.TextAnswers.Answers))
			for i, v := range a.TextAnswers.Answers {
				values[i] = v.Value
			}
			out[qid] = strings.Join(values, ", ")
		case a.FileUploadAnswers != nil:
			names := make([]string, len(a.FileUploadAnswers.Answers))
			for i, f := range a.FileUploadAnswers.Answers {
				names[i] = f.FileName
			}
			out[qid] = names
		case a.Grade != nil:
			out[qid] = a.Grade.Score
		}
	}
	return out
}
