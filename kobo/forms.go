package kobo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FormService lists, reads, deploys and replaces survey assets.
type FormService struct {
	client     *Client
	importPoll PollConfig
}

// NewFormService returns a FormService. A zero importPoll uses
// DefaultImportPoll.
func NewFormService(c *Client, importPoll PollConfig) *FormService {
	return &FormService{client: c, importPoll: importPoll.orDefault(DefaultImportPoll)}
}

type assetPage struct {
	Count   int        `json:"count"`
	Next    *string    `json:"next"`
	Results []Document `json:"results"`
}

// ListForms returns every survey visible to the credential, following the
// server's pagination links. A non-empty search is passed to the server as
// the "q" filter.
func (s *FormService) ListForms(ctx context.Context, search string) ([]FormSummary, error) {
	q := url.Values{"asset_type": {"survey"}}
	if search = strings.TrimSpace(search); search != "" {
		q.Set("q", search)
	}

	var page assetPage
	if err := s.client.get(ctx, "/api/v2/assets/", q, &page); err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}

	forms := make([]FormSummary, 0, len(page.Results))
	seen := make(map[string]bool)
	for {
		for _, d := range page.Results {
			forms = append(forms, summarize(d))
		}
		if page.Next == nil || *page.Next == "" || seen[*page.Next] {
			break
		}
		next := *page.Next
		seen[next] = true
		page = assetPage{}
		if err := s.client.getURL(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("listing forms: %w", err)
		}
	}
	return forms, nil
}

// GetForm returns a single asset including its survey content. An unknown uid
// yields an error matching ErrNotFound.
func (s *FormService) GetForm(ctx context.Context, uid string) (*Form, error) {
	doc, err := s.getAsset(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Form{FormSummary: summarize(doc), Content: doc["content"]}, nil
}

func (s *FormService) getAsset(ctx context.Context, uid string) (Document, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, invalidArgument("form uid is required")
	}
	var doc Document
	if err := s.client.get(ctx, assetPath(uid), nil, &doc); err != nil {
		return nil, fmt.Errorf("getting form %s: %w", uid, err)
	}
	return doc, nil
}

// DeployResult describes a newly deployed form.
type DeployResult struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// DeployForm uploads an XLSForm as a new asset and deploys it. If the upload
// succeeds but deployment fails, the returned *StepError names the undeployed
// asset; nothing is rolled back.
func (s *FormService) DeployForm(ctx context.Context, filePath, name string) (*DeployResult, error) {
	if err := checkFile(filePath); err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		base := filepath.Base(filePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	st := newSteps("deploy_form")

	var asset Document
	fields := map[string]string{"name": name, "asset_type": "survey"}
	if err := s.client.postMultipart(ctx, "/api/v2/assets/", fields, filePath, &asset); err != nil {
		return nil, st.fail("upload asset", err)
	}
	uid := asset.UID()
	if uid == "" {
		return nil, st.fail("upload asset", errors.New("server response carried no uid"))
	}
	st.complete("upload asset")
	st.resource = uid

	deploy := map[string]any{"active": true}
	if err := s.client.postJSON(ctx, assetPath(uid)+"deployment/", deploy, nil); err != nil {
		return nil, st.fail("deploy", err)
	}

	return &DeployResult{
		UID:    uid,
		Name:   name,
		Status: "deployed",
		URL:    s.client.FormURL(uid),
	}, nil
}

// ReplaceResult describes a form after its content was replaced.
type ReplaceResult struct {
	UID             string `json:"uid"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	SubmissionCount int    `json:"submission_count"`
	URL             string `json:"url"`
}

// ReplaceForm imports new XLSForm content into an existing asset and
// redeploys it. The uid and submissions are kept by the server; this method
// only sequences the calls. Failures after the lookup are *StepError values
// with the completed steps listed.
func (s *FormService) ReplaceForm(ctx context.Context, uid, filePath string) (*ReplaceResult, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, invalidArgument("form uid is required")
	}
	if err := checkFile(filePath); err != nil {
		return nil, err
	}

	st := newSteps("replace_form")

	if _, err := s.getAsset(ctx, uid); err != nil {
		return nil, st.fail("look up form", err)
	}
	st.complete("look up form")
	st.resource = uid

	var task Document
	fields := map[string]string{"destination": s.client.AssetURL(uid)}
	if err := s.client.postMultipart(ctx, "/api/v2/imports/", fields, filePath, &task); err != nil {
		return nil, st.fail("upload import", err)
	}
	importUID := task.UID()
	if importUID == "" {
		return nil, st.fail("upload import", errors.New("server response carried no import uid"))
	}
	st.complete("upload import")

	if err := s.waitForImport(ctx, importUID); err != nil {
		return nil, st.fail("wait for import", err)
	}
	st.complete("wait for import")

	current, err := s.getAsset(ctx, uid)
	if err != nil {
		return nil, st.fail("redeploy", err)
	}
	redeploy := map[string]any{"active": true}
	if v := current.String("version_id"); v != "" {
		redeploy["version_id"] = v
	}
	if err := s.client.patchJSON(ctx, assetPath(uid)+"deployment/", redeploy, nil); err != nil {
		return nil, st.fail("redeploy", err)
	}
	st.complete("redeploy")

	refreshed, err := s.getAsset(ctx, uid)
	if err != nil {
		return nil, st.fail("refresh form", err)
	}

	return &ReplaceResult{
		UID:             uid,
		Name:            refreshed.String("name"),
		Status:          "redeployed",
		SubmissionCount: refreshed.Int("deployment__submission_count"),
		URL:             s.client.FormURL(uid),
	}, nil
}

func (s *FormService) waitForImport(ctx context.Context, importUID string) error {
	path := "/api/v2/imports/" + url.PathEscape(importUID) + "/"
	return poll(ctx, s.importPoll, func(ctx context.Context) (bool, error) {
		var status Document
		if err := s.client.get(ctx, path, nil, &status); err != nil {
			return false, err
		}
		switch status.Status() {
		case "complete":
			return true, nil
		case "error":
			return false, fmt.Errorf("%w: %s", ErrImportFailed, messages(status))
		}
		return false, nil
	})
}

// messages renders the "messages" field of a task document.
func messages(d Document) string {
	m, ok := d["messages"]
	if !ok || m == nil {
		return "no details from server"
	}
	if s, ok := m.(string); ok {
		return s
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return string(data)
}

func checkFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return invalidArgument("file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return invalidArgument("file not found: %s", path)
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return invalidArgument("%s is a directory", path)
	}
	return nil
}
