package handlers

import (
	"errors"
	"net/http"

	"github.com/videotube/backend/internal/repositories"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Reader        SubscriptionReader
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}. Subscribing to
// your own channel is rejected; unknown channels yield 404.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	channelID, ok := pathID(r, "channelId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}
	if channelID == user.ID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel does not exist")
			return
		}
		respondStoreError(ctx, w, err, "channel does not exist")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, channelID, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId},
// listing the channels the user follows.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	subscriberID, ok := pathID(r, "subscriberId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid subscriber id")
		return
	}

	channels, err := h.Reader.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondStoreError(ctx, w, err, "subscriptions unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}

// Subscribers handles GET /api/v1/subscriptions/subscribers/{channelId},
// listing the channel's subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	channelID, ok := pathID(r, "channelId")
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	subscribers, err := h.Reader.Subscribers(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "subscribers unavailable")
		return
	}

	respondData(ctx, w, http.StatusOK, subscribers, "subscribers fetched successfully")
}
