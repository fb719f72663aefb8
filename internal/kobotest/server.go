// Package kobotest provides an in-memory KoboToolbox server for tests.
package kobotest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Token is the API token the fake server accepts.
const Token = "test-token"

// Server is a fake KoboToolbox API backed by maps. Tweak the exported knobs
// before issuing requests.
type Server struct {
	*httptest.Server

	// PageSize limits asset list pages so pagination is exercised.
	PageSize int
	// ExportPolls is how many status reads an export stays pending for.
	ExportPolls int
	// ExportFails makes export jobs end in the error state.
	ExportFails bool
	// ExportSync makes export creation return a complete job immediately.
	ExportSync bool
	// ImportPolls is how many status reads an import stays processing for.
	ImportPolls int
	// ImportFails makes import tasks end in the error state.
	ImportFails bool
	// FailDeploy makes deployment calls answer 500.
	FailDeploy bool

	mu           sync.Mutex
	seq          int
	assets       map[string]map[string]any
	order        []string
	submissions  map[string][]map[string]any
	exports      map[string]*job
	imports      map[string]*job
	requests     []string
	lastQuery    string
	lastExport   map[string]any
	lastRedeploy map[string]any
}

type job struct {
	uid       string
	assetUID  string
	remaining int
	fail      bool
	settings  map[string]any
	content   string
}

// NewServer starts a fake server and registers cleanup on t.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		PageSize:    100,
		ExportPolls: 1,
		ImportPolls: 1,
		assets:      make(map[string]map[string]any),
		submissions: make(map[string][]map[string]any),
		exports:     make(map[string]*job),
		imports:     make(map[string]*job),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/assets/{$}", s.listAssets)
	mux.HandleFunc("POST /api/v2/assets/{$}", s.createAsset)
	mux.HandleFunc("GET /api/v2/assets/{uid}/{$}", s.getAsset)
	mux.HandleFunc("POST /api/v2/assets/{uid}/deployment/{$}", s.deploy)
	mux.HandleFunc("PATCH /api/v2/assets/{uid}/deployment/{$}", s.deploy)
	mux.HandleFunc("GET /api/v2/assets/{uid}/data/{$}", s.listData)
	mux.HandleFunc("POST /api/v2/assets/{uid}/exports/{$}", s.createExport)
	mux.HandleFunc("GET /api/v2/assets/{uid}/exports/{euid}/{$}", s.getExport)
	mux.HandleFunc("POST /api/v2/imports/{$}", s.createImport)
	mux.HandleFunc("GET /api/v2/imports/{iuid}/{$}", s.getImport)

	s.Server = httptest.NewServer(s.auth(mux))
	t.Cleanup(s.Close)
	return s
}

// AddForm seeds a deployed survey with n submissions and returns its uid.
func (s *Server) AddForm(name string, n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.newAsset(name, "survey-v1")
	s.assets[uid]["deployment_status"] = "deployed"
	subs := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, map[string]any{"_id": i + 1, "answer": fmt.Sprintf("response-%d", i+1)})
	}
	s.submissions[uid] = subs
	s.assets[uid]["deployment__submission_count"] = n
	return uid
}

// Asset returns a copy of the stored asset document, or nil.
func (s *Server) Asset(uid string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[uid]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AssetCount returns how many assets exist.
func (s *Server) AssetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Requests returns "METHOD /path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// LastQuery returns the most recent submissions "query" parameter.
func (s *Server) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// LastExportSettings returns the body of the most recent export request.
func (s *Server) LastExportSettings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExport
}

// LastRedeploy returns the body of the most recent PATCH deployment call.
func (s *Server) LastRedeploy() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRedeploy
}

func (s *Server) newAsset(name, content string) string {
	s.seq++
	uid := fmt.Sprintf("a%05d", s.seq)
	s.assets[uid] = map[string]any{
		"uid":                          uid,
		"name":                         name,
		"asset_type":                   "survey",
		"deployment_status":            "draft",
		"deployment__submission_count": 0,
		"date_created":                 "2024-01-01T00:00:00Z",
		"date_modified":                "2024-01-01T00:00:00Z",
		"owner__username":              "tester",
		"version_id":                   fmt.Sprintf("v%d", s.seq),
		"content":                      map[string]any{"survey": []any{map[string]any{"type": "text", "name": content}}},
	}
	s.order = append(s.order, uid)
	return uid
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		if r.Header.Get("Authorization") != "Token "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(r.URL.Query().Get("q"))
	var matched []map[string]any
	for _, uid := range s.order {
		a := s.assets[uid]
		if q != "" && !strings.Contains(strings.ToLower(a["name"].(string)), q) {
			continue
		}
		matched = append(matched, summary(a))
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit := s.PageSize
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := []map[string]any{}
	if offset < len(matched) {
		page = matched[offset:end]
	}

	var next any
	if end < len(matched) {
		nq := r.URL.Query()
		nq.Set("offset", strconv.Itoa(end))
		next = s.URL + r.URL.Path + "?" + nq.Encode()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(matched),
		"next":    next,
		"results": page,
	})
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	content, ok := readUpload(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.newAsset(r.FormValue("name"), content)
	writeJSON(w, http.StatusCreated, s.assets[uid])
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[r.PathValue("uid")]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deploy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[r.PathValue("uid")]
	if !ok {
		notFound(w)
		return
	}
	if s.FailDeploy {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "deployment backend unavailable"})
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	if r.Method == http.MethodPatch {
		s.lastRedeploy = body
	}
	a["deployment_status"] = "deployed"
	writeJSON(w, http.StatusOK, map[string]any{"active": true, "version_id": a["version_id"]})
}

func (s *Server) listData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := r.PathValue("uid")
	if _, ok := s.assets[uid]; !ok {
		notFound(w)
		return
	}
	s.lastQuery = r.URL.Query().Get("query")
	subs := s.submissions[uid]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	results := []map[string]any{}
	for i := start; i < len(subs) && i < start+limit; i++ {
		results = append(results, subs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(subs), "results": results})
}

func (s *Server) createExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := r.PathValue("uid")
	if _, ok := s.assets[uid]; !ok {
		notFound(w)
		return
	}
	var settings map[string]any
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	}
	s.lastExport = settings
	s.seq++
	j := &job{
		uid:       fmt.Sprintf("e%05d", s.seq),
		assetUID:  uid,
		remaining: s.ExportPolls,
		fail:      s.ExportFails,
		settings:  settings,
	}
	s.exports[j.uid] = j
	if s.ExportSync {
		j.remaining = 0
		writeJSON(w, http.StatusCreated, s.exportDoc(j))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"uid": j.uid, "status": "created", "data": settings})
}

func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.exports[r.PathValue("euid")]
	if !ok || j.assetUID != r.PathValue("uid") {
		notFound(w)
		return
	}
	if j.remaining > 0 {
		j.remaining--
		writeJSON(w, http.StatusOK, map[string]any{"uid": j.uid, "status": "processing", "data": j.settings})
		return
	}
	writeJSON(w, http.StatusOK, s.exportDoc(j))
}

func (s *Server) exportDoc(j *job) map[string]any {
	if j.fail {
		return map[string]any{"uid": j.uid, "status": "error", "messages": map[string]any{"error": []any{"export crashed"}}, "data": j.settings}
	}
	ext := j.settings["type"]
	return map[string]any{
		"uid":    j.uid,
		"status": "complete",
		"result": fmt.Sprintf("%s/private-media/exports/%s.%v", s.URL, j.uid, ext),
		"data":   j.settings,
	}
}

func (s *Server) createImport(w http.ResponseWriter, r *http.Request) {
	content, ok := readUpload(w, r)
	if !ok {
		return
	}
	dest := strings.TrimSuffix(r.FormValue("destination"), "/")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	j := &job{
		uid:       fmt.Sprintf("i%05d", s.seq),
		assetUID:  path.Base(dest),
		remaining: s.ImportPolls,
		fail:      s.ImportFails,
		content:   content,
	}
	s.imports[j.uid] = j
	writeJSON(w, http.StatusCreated, map[string]any{"uid": j.uid, "status": "created"})
}

func (s *Server) getImport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.imports[r.PathValue("iuid")]
	if !ok {
		notFound(w)
		return
	}
	if j.remaining > 0 {
		j.remaining--
		writeJSON(w, http.StatusOK, map[string]any{"uid": j.uid, "status": "processing"})
		return
	}
	if j.fail {
		writeJSON(w, http.StatusOK, map[string]any{"uid": j.uid, "status": "error", "messages": map[string]any{"error": "bad xlsform"}})
		return
	}
	if a, ok := s.assets[j.assetUID]; ok && j.content != "" {
		s.seq++
		a["content"] = map[string]any{"survey": []any{map[string]any{"type": "text", "name": j.content}}}
		a["version_id"] = fmt.Sprintf("v%d", s.seq)
		a["date_modified"] = "2024-02-01T00:00:00Z"
		j.content = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"uid": j.uid, "status": "complete"})
}

// Content returns the survey question name stored for uid, which the fake
// derives from the uploaded file's contents.
func (s *Server) Content(uid string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[uid]
	if !ok {
		return ""
	}
	survey := a["content"].(map[string]any)["survey"].([]any)
	return survey[0].(map[string]any)["name"].(string)
}

// UIDs returns all asset uids in creation order.
func (s *Server) UIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return "", false
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "file is required"})
		return "", false
	}
	defer func() { _ = f.Close() }()
	data, _ := io.ReadAll(f)
	return strings.TrimSpace(string(data)), true
}

func summary(a map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if k == "content" {
			continue
		}
		out[k] = v
	}
	return out
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
