package storyclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchStoriesSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/stories" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("got Authorization %q", got)
		}
		json.NewEncoder(w).Encode([]Story{
			{ID: "a", AuthorID: "2", Username: "eve"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", Session{UserID: "1", Token: "tok"}, srv.Client())
	stories, err := c.FetchStories(context.Background())
	if err != nil {
		t.Fatalf("FetchStories: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != "a" {
		t.Fatalf("got %+v", stories)
	}
}

func TestCreateStorySendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateStoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.ImageURL != "https://cdn/img.png" || req.DurationHours != 48 {
			t.Errorf("got %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Story{ID: "new", ImageURL: req.ImageURL})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", Session{UserID: "1", Token: "tok"}, srv.Client())
	story, err := c.CreateStory(context.Background(), CreateStoryRequest{
		ImageURL:      "https://cdn/img.png",
		DurationHours: 48,
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if story.ID != "new" {
		t.Fatalf("got story %+v", story)
	}
}

func TestErrorResponseDecodesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "story not found"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", Session{UserID: "1", Token: "tok"}, srv.Client())
	err := c.MarkViewed(context.Background(), "gone")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "story not found" {
		t.Fatalf("got %+v", apiErr)
	}
}

func TestDeleteStoryNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/stories/mine" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", Session{UserID: "1", Token: "tok"}, srv.Client())
	if err := c.DeleteStory(context.Background(), "mine"); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
}

func TestViewedBy(t *testing.T) {
	s := Story{ViewerIDs: []string{"2", "3"}}
	if !s.ViewedBy("2") {
		t.Fatal("expected viewer 2 present")
	}
	if s.ViewedBy("9") {
		t.Fatal("viewer 9 never viewed")
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", Session{UserID: "1", Token: "tok"}, srv.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.FetchStories(ctx); err == nil {
		t.Fatal("expected a context deadline error")
	}
}
