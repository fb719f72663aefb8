package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultSubmissionLimit is the page size used when none is given.
	DefaultSubmissionLimit = 100
	// MaxSubmissionLimit is the largest page the server will return.
	MaxSubmissionLimit = 30000
)

// SubmissionQuery selects one page of submissions.
type SubmissionQuery struct {
	Limit int
	Start int
	// Filter is an optional JSON-encoded query, e.g. {"_submission_time": {"$gt": "2024-01-01"}}.
	Filter string
}

// SubmissionPage is one page of submissions plus the server's total count.
type SubmissionPage struct {
	Count   int        `json:"count"`
	Results []Document `json:"results"`
}

// SubmissionService reads survey responses.
type SubmissionService struct {
	client *Client
}

// NewSubmissionService returns a SubmissionService.
func NewSubmissionService(c *Client) *SubmissionService {
	return &SubmissionService{client: c}
}

// GetSubmissions fetches a single page. Callers page through all results by
// advancing Start by Limit until Start >= Count.
func (s *SubmissionService) GetSubmissions(ctx context.Context, formUID string, q SubmissionQuery) (*SubmissionPage, error) {
	formUID = strings.TrimSpace(formUID)
	if formUID == "" {
		return nil, invalidArgument("form uid is required")
	}
	if q.Limit == 0 {
		q.Limit = DefaultSubmissionLimit
	}
	if q.Limit < 0 || q.Limit > MaxSubmissionLimit {
		return nil, invalidArgument("limit must be between 1 and %d, got %d", MaxSubmissionLimit, q.Limit)
	}
	if q.Start < 0 {
		return nil, invalidArgument("start must not be negative, got %d", q.Start)
	}

	params := url.Values{
		"limit": {strconv.Itoa(q.Limit)},
		"start": {strconv.Itoa(q.Start)},
	}
	if f := strings.TrimSpace(q.Filter); f != "" {
		if !json.Valid([]byte(f)) {
			return nil, invalidArgument("query must be valid JSON: %s", f)
		}
		params.Set("query", f)
	}

	var page SubmissionPage
	if err := s.client.get(ctx, assetPath(formUID)+"data/", params, &page); err != nil {
		return nil, fmt.Errorf("getting submissions for %s: %w", formUID, err)
	}
	if page.Results == nil {
		page.Results = []Document{}
	}
	return &page, nil
}
