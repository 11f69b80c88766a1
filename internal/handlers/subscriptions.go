package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/models"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Sessions      TokenVerifier
}

// Toggle handles POST /api/v1/subscriptions/channel/{channelId}/toggle.
// Subscribing to your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, ok := requireViewer(w, r, h.Sessions)
	if !ok {
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == subscriberID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, models.Subscription{
		ID:           uuid.NewString(),
		ChannelID:    channelID,
		SubscriberID: subscriberID,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/channel/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireViewer(w, r, h.Sessions); !ok {
		return
	}

	profiles, err := h.Subscriptions.ListSubscribers(ctx, r.PathValue("channelId"))
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}
	if profiles == nil {
		profiles = []models.OwnerProfile{}
	}

	respondData(ctx, w, http.StatusOK, profiles, "subscribers")
}

// SubscribedChannels handles GET /api/v1/subscriptions/user/{userId}/channels.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireViewer(w, r, h.Sessions); !ok {
		return
	}

	profiles, err := h.Subscriptions.ListSubscribedChannels(ctx, r.PathValue("userId"))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if profiles == nil {
		profiles = []models.OwnerProfile{}
	}

	respondData(ctx, w, http.StatusOK, profiles, "subscribed channels")
}
