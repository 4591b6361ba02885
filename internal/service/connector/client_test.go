package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRefreshRunsAllPhases(t *testing.T) {
	var policyCalls, pageCalls, productCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer admin-secret" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if r.URL.Query().Get("admin") != "update-knowledge" {
			t.Fatalf("unexpected admin param %q", r.URL.Query().Get("admin"))
		}

		switch r.URL.Query().Get("kind") {
		case "policies":
			policyCalls++
			if r.URL.Query().Get("reset") != "1" {
				t.Fatal("policies phase must reset")
			}
			fmt.Fprint(w, `{"items_curated":3}`)
		case "pages":
			pageCalls++
			if r.URL.Query().Get("reset") != "" {
				t.Fatal("pages phase must not reset")
			}
			fmt.Fprint(w, `{"items_curated":2}`)
		case "products":
			productCalls++
			if r.URL.Query().Get("offset") == "0" {
				fmt.Fprint(w, `{"items_curated":5}`)
				return
			}
			fmt.Fprint(w, `{"items_curated":0}`)
		default:
			t.Fatalf("unexpected kind %q", r.URL.Query().Get("kind"))
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AdminSecret: "admin-secret"})
	sum, err := client.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if sum.Policies != 3 || sum.Pages != 2 || sum.Products != 5 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if policyCalls != 1 || pageCalls != 1 {
		t.Fatalf("expected one policies and one pages call, got %d/%d", policyCalls, pageCalls)
	}
	// One productive batch plus three consecutive empty ones.
	if productCalls != 4 {
		t.Fatalf("expected 4 product batches, got %d", productCalls)
	}
}

func TestRefreshStopsAtFirstFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "admin secret rejected")
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AdminSecret: "wrong"})
	_, err := client.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh to fail")
	}

	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected PhaseError, got %T", err)
	}
	if phaseErr.Phase != "Phase A (policies)" {
		t.Fatalf("expected failure in phase A, got %q", phaseErr.Phase)
	}
	if phaseErr.Status != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", phaseErr.Status)
	}
	if !strings.Contains(phaseErr.Error(), "admin secret rejected") {
		t.Fatalf("expected upstream body in error, got %q", phaseErr.Error())
	}
}

func TestRefreshTruncatesLongErrorBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, strings.Repeat("x", 5000))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, AdminSecret: "admin-secret"})
	_, err := client.Refresh(context.Background())

	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("expected PhaseError, got %v", err)
	}
	if len(phaseErr.Body) != maxErrorBody {
		t.Fatalf("expected body capped at %d bytes, got %d", maxErrorBody, len(phaseErr.Body))
	}
}

func TestRefreshUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Refresh(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
