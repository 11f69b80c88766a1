package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/backend/internal/models"
)

type fakeSubscriptions struct {
	members  map[string]bool
	profiles []models.OwnerProfile
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{members: make(map[string]bool)}
}

func (f *fakeSubscriptions) Toggle(_ context.Context, sub models.Subscription) (bool, error) {
	key := sub.ChannelID + ":" + sub.SubscriberID
	if f.members[key] {
		delete(f.members, key)
		return false, nil
	}
	f.members[key] = true
	return true, nil
}

func (f *fakeSubscriptions) ListSubscribers(context.Context, string) ([]models.OwnerProfile, error) {
	return f.profiles, nil
}

func (f *fakeSubscriptions) ListSubscribedChannels(context.Context, string) ([]models.OwnerProfile, error) {
	return f.profiles, nil
}

func TestToggleSubscriptionFlips(t *testing.T) {
	subs := newFakeSubscriptions()
	handler := SubscriptionHandler{Subscriptions: subs, Sessions: newFakeSessions(map[string]string{"tok": "u2"})}

	for _, want := range []bool{true, false} {
		req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel/u1/toggle", nil), "tok")
		req.SetPathValue("channelId", "u1")
		rec := httptest.NewRecorder()
		handler.Toggle(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		envelope := decodeEnvelope(t, rec)
		var result map[string]bool
		remarshal(t, envelope.Data, &result)
		if result["subscribed"] != want {
			t.Fatalf("expected subscribed=%v got %v", want, result["subscribed"])
		}
	}
}

func TestToggleSubscriptionRejectsSelf(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptions(), Sessions: newFakeSessions(map[string]string{"tok": "u1"})}

	req := asBearer(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel/u1/toggle", nil), "tok")
	req.SetPathValue("channelId", "u1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListSubscribers(t *testing.T) {
	subs := newFakeSubscriptions()
	subs.profiles = []models.OwnerProfile{{Username: "bob"}}
	handler := SubscriptionHandler{Subscriptions: subs, Sessions: newFakeSessions(map[string]string{"tok": "u1"})}

	req := asBearer(httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/channel/u1/subscribers", nil), "tok")
	req.SetPathValue("channelId", "u1")
	rec := httptest.NewRecorder()
	handler.Subscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	var profiles []models.OwnerProfile
	remarshal(t, envelope.Data, &profiles)
	if len(profiles) != 1 || profiles[0].Username != "bob" {
		t.Fatalf("unexpected subscribers %v", profiles)
	}
}
