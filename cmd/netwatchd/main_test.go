package main

import (
	"net/http/httptest"
	"testing"
)

func TestHealthServerReportsOK(t *testing.T) {
	srv := newHealthServer(":0")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected body %q, got %q", "ok", rec.Body.String())
	}
}

func TestRootCommandHasVersionSubcommand(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Use == "version" {
			found = true
		}
	}
	if !found {
		t.Error("expected rootCmd to register a version subcommand")
	}
}
