package kobo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bbdaniels/kobo-mcp/internal/kobotest"
)

func TestExportData_Polls(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportPolls = 3
	uid := srv.AddForm("household", 4)

	res, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), uid, ExportOptions{IncludeLabels: true})
	if err != nil {
		t.Fatalf("ExportData error: %v", err)
	}
	if res.Status != ExportReady || res.DownloadURL == "" {
		t.Errorf("result: %+v", res)
	}
	if res.Type != "csv" || !strings.HasSuffix(res.DownloadURL, ".csv") {
		t.Errorf("type: %+v", res)
	}

	settings := srv.LastExportSettings()
	if settings["type"] != "csv" || settings["lang"] != "_default" || settings["hierarchy_in_labels"] != true {
		t.Errorf("settings: %v", settings)
	}
	if settings["fields_from_all_versions"] != true || settings["group_sep"] != "/" || settings["multiple_select"] != "both" {
		t.Errorf("fixed settings: %v", settings)
	}
}

func TestExportData_XLSWithoutLabels(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("household", 1)

	res, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), uid, ExportOptions{Type: "XLS"})
	if err != nil {
		t.Fatalf("ExportData error: %v", err)
	}
	if res.Type != "xls" {
		t.Errorf("type: got %q", res.Type)
	}
	if srv.LastExportSettings()["lang"] != "_xml" {
		t.Errorf("lang: %v", srv.LastExportSettings())
	}
}

func TestExportData_SynchronousServer(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportSync = true
	uid := srv.AddForm("household", 1)

	res, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), uid, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportData error: %v", err)
	}
	if res.Status != ExportReady {
		t.Errorf("status: got %q", res.Status)
	}
	for _, r := range srv.Requests() {
		if strings.HasPrefix(r, "GET ") && strings.Contains(r, "/exports/") {
			t.Errorf("should not poll a completed export: %s", r)
		}
	}
}

func TestExportData_Timeout(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportPolls = 1000
	uid := srv.AddForm("household", 1)

	start := time.Now()
	_, err := NewExportService(newTestClient(t, srv), PollConfig{Attempts: 3, Interval: time.Millisecond}).
		ExportData(context.Background(), uid, ExportOptions{})
	if !errors.Is(err, ErrPollTimeout) || KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %q: %v", KindOf(err), err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("poll loop exceeded its budget")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || !strings.HasPrefix(stepErr.Resource, "e") {
		t.Errorf("timeout should name the export job: %+v", stepErr)
	}

	polls := 0
	for _, r := range srv.Requests() {
		if strings.HasPrefix(r, "GET ") && strings.Contains(r, "/exports/") {
			polls++
		}
	}
	if polls != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
}

func TestExportData_Failed(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportFails = true
	uid := srv.AddForm("household", 1)

	_, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), uid, ExportOptions{})
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if KindOf(err) != KindPartialFailure {
		t.Errorf("kind: got %q", KindOf(err))
	}
	if !strings.Contains(err.Error(), "export crashed") {
		t.Errorf("server messages should be surfaced: %v", err)
	}
}

func TestExportData_InvalidType(t *testing.T) {
	srv := kobotest.NewServer(t)
	_, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), "a1", ExportOptions{Type: "pdf"})
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("kind: got %q (%v)", KindOf(err), err)
	}
}

func TestExportData_UnknownForm(t *testing.T) {
	srv := kobotest.NewServer(t)
	_, err := NewExportService(newTestClient(t, srv), fastPoll).ExportData(context.Background(), "nonexistent", ExportOptions{})
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind: got %q (%v)", KindOf(err), err)
	}
}

func TestExportData_ContextCancelled(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportPolls = 1000
	uid := srv.AddForm("household", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewExportService(newTestClient(t, srv), PollConfig{Attempts: 1000, Interval: 20 * time.Millisecond}).
		ExportData(ctx, uid, ExportOptions{})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
}

func TestGetExport(t *testing.T) {
	srv := kobotest.NewServer(t)
	srv.ExportPolls = 1000
	uid := srv.AddForm("household", 1)
	exports := NewExportService(newTestClient(t, srv), PollConfig{Attempts: 1, Interval: time.Millisecond})

	_, err := exports.ExportData(context.Background(), uid, ExportOptions{})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected step error, got %v", err)
	}

	res, err := exports.GetExport(context.Background(), uid, stepErr.Resource)
	if err != nil {
		t.Fatalf("GetExport error: %v", err)
	}
	if res.Status != ExportPending || res.ExportUID != stepErr.Resource || res.Type != "csv" {
		t.Errorf("result: %+v", res)
	}
}

func TestExportState(t *testing.T) {
	tests := []struct {
		status   string
		want     ExportState
		terminal bool
	}{
		{"created", ExportCreated, false},
		{"processing", ExportPending, false},
		{"complete", ExportReady, true},
		{"error", ExportFailed, true},
	}
	for _, tt := range tests {
		got := exportState(tt.status)
		if got != tt.want || got.Terminal() != tt.terminal {
			t.Errorf("exportState(%q) = %q (terminal %v)", tt.status, got, got.Terminal())
		}
	}
}
