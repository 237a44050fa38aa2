package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rasel39/gigmarket/backend/internal/metrics"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
	"github.com/rasel39/gigmarket/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memStoryRepo struct {
	stories map[string]*models.Story
	getErr  error
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{stories: make(map[string]*models.Story)}
}

func (r *memStoryRepo) add(authorID string, expiresAt time.Time) *models.Story {
	s := &models.Story{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		ImageURL:  "https://cdn/img.png",
		ViewerIDs: []string{},
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	r.stories[s.ID.Hex()] = s
	return s
}

func (r *memStoryRepo) CreateStory(_ context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	if story.ViewerIDs == nil {
		story.ViewerIDs = []string{}
	}
	r.stories[story.ID.Hex()] = story
	return nil
}

func (r *memStoryRepo) GetActiveStoryByID(_ context.Context, id string) (*models.Story, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repositories.ErrInvalidID
	}
	s, ok := r.stories[id]
	if !ok || !s.Active(time.Now()) {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (r *memStoryRepo) GetActiveStories(_ context.Context) ([]models.Story, error) {
	out := []models.Story{}
	for _, s := range r.stories {
		if s.Active(time.Now()) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) GetActiveStoriesByAuthor(_ context.Context, authorID string) ([]models.Story, error) {
	out := []models.Story{}
	for _, s := range r.stories {
		if s.AuthorID == authorID && s.Active(time.Now()) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) AddViewer(_ context.Context, storyID, viewerID string) error {
	s, ok := r.stories[storyID]
	if !ok || !s.Active(time.Now()) {
		return repositories.ErrNotFound
	}
	for _, id := range s.ViewerIDs {
		if id == viewerID {
			return nil
		}
	}
	s.ViewerIDs = append(s.ViewerIDs, viewerID)
	return nil
}

func (r *memStoryRepo) DeleteStory(_ context.Context, id string) error {
	if _, ok := r.stories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.stories, id)
	return nil
}

type memUserRepo struct {
	users      map[uint]*models.User
	batchCalls int
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	r.batchCalls++
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) DeleteUser(id uint) error {
	delete(r.users, id)
	return nil
}

func newStoryTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authenticate(c echo.Context, userID uint) {
	c.Set("user", &models.JwtCustomClaims{UserID: userID})
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("got %v, want *echo.HTTPError", err)
	}
	return he.Code
}

func TestCreateStoryRequiresAuth(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories", `{"image_url":"https://cdn/a.png"}`)

	if status := httpStatus(t, h.CreateStory(c)); status != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", status)
	}
}

func TestCreateStoryDefaultsTo24Hours(t *testing.T) {
	repo := newMemStoryRepo()
	h := NewStoryHandler(repo, newMemUserRepo(), metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodPost, "/api/stories", `{"image_url":"https://cdn/a.png","text":"sale"}`)
	authenticate(c, 7)

	if err := h.CreateStory(c); err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201", rec.Code)
	}

	var created models.Story
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AuthorID != "7" {
		t.Fatalf("got author %q, want 7", created.AuthorID)
	}
	if lifetime := created.ExpiresAt.Sub(created.CreatedAt); lifetime != 24*time.Hour {
		t.Fatalf("got lifetime %v, want exactly 24h", lifetime)
	}
}

func TestCreateStoryCustomDuration(t *testing.T) {
	repo := newMemStoryRepo()
	h := NewStoryHandler(repo, newMemUserRepo(), metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodPost, "/api/stories", `{"image_url":"https://cdn/a.png","duration_hours":48}`)
	authenticate(c, 7)

	if err := h.CreateStory(c); err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	var created models.Story
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if lifetime := created.ExpiresAt.Sub(created.CreatedAt); lifetime != 48*time.Hour {
		t.Fatalf("got lifetime %v, want exactly 48h", lifetime)
	}
}

func TestCreateStoryRejectsUnsupportedDuration(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories", `{"image_url":"https://cdn/a.png","duration_hours":13}`)
	authenticate(c, 7)

	if status := httpStatus(t, h.CreateStory(c)); status != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", status)
	}
}

func TestCreateStoryRequiresImageURL(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories", `{"text":"no image"}`)
	authenticate(c, 7)

	if status := httpStatus(t, h.CreateStory(c)); status != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", status)
	}
}

func TestGetStoriesAnnotatesAuthorsWithOneBatchLookup(t *testing.T) {
	storyRepo := newMemStoryRepo()
	storyRepo.add("2", time.Now().Add(time.Hour))
	storyRepo.add("2", time.Now().Add(time.Hour))
	storyRepo.add("99", time.Now().Add(time.Hour)) // author no longer exists
	userRepo := newMemUserRepo(&models.User{ID: 2, Username: "eve", Img: "https://cdn/eve.png"})
	h := NewStoryHandler(storyRepo, userRepo, metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodGet, "/api/stories", "")

	if err := h.GetStories(c); err != nil {
		t.Fatalf("GetStories: %v", err)
	}
	if userRepo.batchCalls != 1 {
		t.Fatalf("got %d author lookups, want a single batched query", userRepo.batchCalls)
	}

	var out []models.StoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d stories, want 3", len(out))
	}
	for _, s := range out {
		if s.ViewerIDs == nil {
			t.Fatal("viewer_ids must encode as an array, never null")
		}
		switch s.AuthorID {
		case "2":
			if s.Username != "eve" || s.UserImg != "https://cdn/eve.png" {
				t.Fatalf("got author annotation %q/%q", s.Username, s.UserImg)
			}
		case "99":
			if s.Username != "Unknown User" {
				t.Fatalf("got %q for a vanished author, want Unknown User", s.Username)
			}
		}
	}
}

func TestGetUserStoriesUnknownUser(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodGet, "/api/stories/user/42", "")
	c.SetParamNames("userId")
	c.SetParamValues("42")

	if status := httpStatus(t, h.GetUserStories(c)); status != http.StatusNotFound {
		t.Fatalf("got %d, want 404", status)
	}
}

func TestGetUserStoriesKnownUserWithNoStories(t *testing.T) {
	userRepo := newMemUserRepo(&models.User{ID: 2, Username: "eve"})
	h := NewStoryHandler(newMemStoryRepo(), userRepo, metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodGet, "/api/stories/user/2", "")
	c.SetParamNames("userId")
	c.SetParamValues("2")

	if err := h.GetUserStories(c); err != nil {
		t.Fatalf("GetUserStories: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("got body %q, want an empty array", body)
	}
}

func TestViewStoryAddsViewerOnce(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("2", time.Now().Add(time.Hour))
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())

	for i := 0; i < 2; i++ {
		c, rec := newStoryTestContext(t, http.MethodPost, "/api/stories/"+story.ID.Hex()+"/view", "")
		c.SetParamNames("id")
		c.SetParamValues(story.ID.Hex())
		authenticate(c, 5)
		if err := h.ViewStory(c); err != nil {
			t.Fatalf("ViewStory: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d, want 200", rec.Code)
		}
	}

	if len(story.ViewerIDs) != 1 || story.ViewerIDs[0] != "5" {
		t.Fatalf("got viewers %v, want exactly [5]", story.ViewerIDs)
	}
}

func TestViewStorySelfViewIsNoOp(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("5", time.Now().Add(time.Hour))
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodPost, "/api/stories/"+story.ID.Hex()+"/view", "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if err := h.ViewStory(c); err != nil {
		t.Fatalf("ViewStory: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(story.ViewerIDs) != 0 {
		t.Fatalf("author must never enter the viewer set, got %v", story.ViewerIDs)
	}
}

func TestViewStoryExpired(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("2", time.Now().Add(-time.Minute))
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories/"+story.ID.Hex()+"/view", "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if status := httpStatus(t, h.ViewStory(c)); status != http.StatusNotFound {
		t.Fatalf("got %d, want 404 for an expired story", status)
	}
}

func TestDeleteStoryOnlyAuthor(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("2", time.Now().Add(time.Hour))
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodDelete, "/api/stories/"+story.ID.Hex(), "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if status := httpStatus(t, h.DeleteStory(c)); status != http.StatusForbidden {
		t.Fatalf("got %d, want 403", status)
	}
	if _, ok := storyRepo.stories[story.ID.Hex()]; !ok {
		t.Fatal("a forbidden delete must not remove the story")
	}
}

func TestDeleteStoryByAuthor(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("5", time.Now().Add(time.Hour))
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, rec := newStoryTestContext(t, http.MethodDelete, "/api/stories/"+story.ID.Hex(), "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if err := h.DeleteStory(c); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if _, ok := storyRepo.stories[story.ID.Hex()]; ok {
		t.Fatal("expected the story deleted")
	}
}

func TestViewStoryMalformedID(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories/not-a-hex/view", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-hex")
	authenticate(c, 5)

	if status := httpStatus(t, h.ViewStory(c)); status != http.StatusBadRequest {
		t.Fatalf("got %d, want 400 for a malformed story ID", status)
	}
}

func TestViewStoryStorageFailure(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("2", time.Now().Add(time.Hour))
	storyRepo.getErr = errors.New("connection reset")
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodPost, "/api/stories/"+story.ID.Hex()+"/view", "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if status := httpStatus(t, h.ViewStory(c)); status != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500 for a storage failure", status)
	}
}

func TestDeleteStoryStorageFailure(t *testing.T) {
	storyRepo := newMemStoryRepo()
	story := storyRepo.add("5", time.Now().Add(time.Hour))
	storyRepo.getErr = errors.New("connection reset")
	h := NewStoryHandler(storyRepo, newMemUserRepo(), metrics.NewCollector())
	c, _ := newStoryTestContext(t, http.MethodDelete, "/api/stories/"+story.ID.Hex(), "")
	c.SetParamNames("id")
	c.SetParamValues(story.ID.Hex())
	authenticate(c, 5)

	if status := httpStatus(t, h.DeleteStory(c)); status != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500 for a storage failure", status)
	}
}

func TestDeleteStoryMissing(t *testing.T) {
	h := NewStoryHandler(newMemStoryRepo(), newMemUserRepo(), metrics.NewCollector())
	id := primitive.NewObjectID().Hex()
	c, _ := newStoryTestContext(t, http.MethodDelete, "/api/stories/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	authenticate(c, 5)

	if status := httpStatus(t, h.DeleteStory(c)); status != http.StatusNotFound {
		t.Fatalf("got %d, want 404", status)
	}
}
