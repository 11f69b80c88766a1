package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type fakeVideos struct {
	byID map[string]models.Video
}

func newFakeVideos(videos ...models.Video) *fakeVideos {
	f := &fakeVideos{byID: make(map[string]models.Video)}
	for _, video := range videos {
		f.byID[video.ID] = video
	}
	return f
}

func (f *fakeVideos) Create(_ context.Context, video models.Video) error {
	f.byID[video.ID] = video
	return nil
}

func (f *fakeVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := f.byID[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideos) List(_ context.Context, ownerID string, page, limit int) ([]models.Video, error) {
	var out []models.Video
	for _, video := range f.byID {
		if !video.IsPublished {
			continue
		}
		if ownerID != "" && video.OwnerID != ownerID {
			continue
		}
		out = append(out, video)
	}
	return out, nil
}

func (f *fakeVideos) Update(_ context.Context, video models.Video) error {
	if _, ok := f.byID[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[video.ID] = video
	return nil
}

func (f *fakeVideos) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func newVideoHandler(videos *fakeVideos, sessions *fakeSessions) VideoHandler {
	return VideoHandler{
		Videos:   videos,
		Media:    &fakeMedia{},
		Sessions: sessions,
		Profiles: &fakeProfiles{},
	}
}

func TestPublishVideo(t *testing.T) {
	videos := newFakeVideos()
	handler := newVideoHandler(videos, newFakeSessions(map[string]string{"tok": "u1"}))

	body, contentType := multipartBody(t,
		map[string]string{"title": "My clip", "description": "first upload"},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"},
	)
	req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), "tok")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Publish(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	var created models.Video
	remarshal(t, envelope.Data, &created)
	if created.OwnerID != "u1" || !created.IsPublished {
		t.Fatalf("unexpected video %+v", created)
	}
	if created.DurationSeconds != 120 {
		t.Fatalf("expected probed duration from upload, got %v", created.DurationSeconds)
	}
	if created.VideoURL == "" || created.ThumbnailURL == "" {
		t.Fatalf("expected media urls to be set: %+v", created)
	}
}

func TestPublishRequiresAuth(t *testing.T) {
	handler := newVideoHandler(newFakeVideos(), newFakeSessions(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", strings.NewReader(""))
	rec := httptest.NewRecorder()
	handler.Publish(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestVideoDetailForwardsViewer(t *testing.T) {
	profiles := &fakeProfiles{detail: models.VideoDetail{Video: models.Video{ID: "v1"}}}
	handler := newVideoHandler(newFakeVideos(), newFakeSessions(map[string]string{"tok": "u2"}))
	handler.Profiles = profiles

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/v1", nil)
	req.SetPathValue("id", "v1")
	rec := httptest.NewRecorder()
	handler.Detail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if profiles.lastViewerID != "" {
		t.Fatalf("expected anonymous viewer, got %q", profiles.lastViewerID)
	}

	req = asBearer(httptest.NewRequest(http.MethodGet, "/api/v1/videos/v1", nil), "tok")
	req.SetPathValue("id", "v1")
	rec = httptest.NewRecorder()
	handler.Detail(rec, req)
	if profiles.lastViewerID != "u2" {
		t.Fatalf("expected viewer u2, got %q", profiles.lastViewerID)
	}
}

func TestVideoDetailNotFound(t *testing.T) {
	profiles := &fakeProfiles{err: repositories.ErrNotFound}
	handler := newVideoHandler(newFakeVideos(), newFakeSessions(nil))
	handler.Profiles = profiles

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handler.Detail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestUpdateVideoOwnership(t *testing.T) {
	videos := newFakeVideos(models.Video{ID: "v1", OwnerID: "u1", Title: "Old"})
	handler := newVideoHandler(videos, newFakeSessions(map[string]string{"owner": "u1", "other": "u2"}))

	req := asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1",
		strings.NewReader(`{"title":"New"}`)), "other")
	req.SetPathValue("id", "v1")
	rec := httptest.NewRecorder()
	handler.Update(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner got %d", rec.Code)
	}

	req = asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1",
		strings.NewReader(`{"title":"New"}`)), "owner")
	req.SetPathValue("id", "v1")
	rec = httptest.NewRecorder()
	handler.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := videos.FindByID(context.Background(), "v1")
	if stored.Title != "New" {
		t.Fatalf("expected updated title, got %q", stored.Title)
	}
}

func TestDeleteVideo(t *testing.T) {
	videos := newFakeVideos(models.Video{ID: "v1", OwnerID: "u1"})
	handler := newVideoHandler(videos, newFakeSessions(map[string]string{"owner": "u1"}))

	req := asBearer(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/v1", nil), "owner")
	req.SetPathValue("id", "v1")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(videos.byID) != 0 {
		t.Fatalf("expected video to be deleted")
	}
}

func TestTogglePublish(t *testing.T) {
	videos := newFakeVideos(models.Video{ID: "v1", OwnerID: "u1", IsPublished: true})
	handler := newVideoHandler(videos, newFakeSessions(map[string]string{"owner": "u1"}))

	for _, want := range []bool{false, true} {
		req := asBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1/toggle-publish", nil), "owner")
		req.SetPathValue("id", "v1")
		rec := httptest.NewRecorder()
		handler.TogglePublish(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		stored, _ := videos.FindByID(context.Background(), "v1")
		if stored.IsPublished != want {
			t.Fatalf("expected isPublished=%v got %v", want, stored.IsPublished)
		}
	}
}

func TestListVideosFiltersByOwner(t *testing.T) {
	videos := newFakeVideos(
		models.Video{ID: "v1", OwnerID: "u1", IsPublished: true},
		models.Video{ID: "v2", OwnerID: "u2", IsPublished: true},
		models.Video{ID: "v3", OwnerID: "u1", IsPublished: false},
	)
	handler := newVideoHandler(videos, newFakeSessions(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?ownerId=u1", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	var listed []models.Video
	remarshal(t, envelope.Data, &listed)
	if len(listed) != 1 || listed[0].ID != "v1" {
		t.Fatalf("expected only u1's published video, got %v", listed)
	}
}
