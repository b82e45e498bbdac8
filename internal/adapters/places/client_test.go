package places_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviews_importer/internal/adapters/places"
	"reviews_importer/internal/domain"
)

func TestClient_PlaceDetails_QueryShape(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"rating": 4.5}})
	}))
	defer ts.Close()

	cl, err := places.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.PlaceDetails(ctx, "place-1", "key-1", "newest", "hu")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["result"] == nil {
		t.Fatalf("payload not decoded: %+v", got)
	}

	want := map[string]string{
		"placeid":                 "place-1",
		"key":                     "key-1",
		"reviews_sort":            "newest",
		"reviews_no_translations": "false",
		"language":                "hu",
		"fields":                  "formatted_address,icon,id,name,rating,reviews,url,user_ratings_total,vicinity",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestClient_PlaceDetails_ProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Places reports API errors inside a 200 body.
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error_message": "The provided API key is invalid.",
			"status":        "REQUEST_DENIED",
		})
	}))
	defer ts.Close()

	cl, _ := places.New(ts.URL, 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.PlaceDetails(ctx, "p", "k", "newest", "en")
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Status != "REQUEST_DENIED" {
		t.Fatalf("unexpected status: %q", pe.Status)
	}
}

func TestClient_PlaceDetails_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, _ := places.New(ts.URL, 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cl.PlaceDetails(ctx, "p", "k", "newest", "en"); err == nil {
		t.Fatalf("expected error for 500")
	}
}
