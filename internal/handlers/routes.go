package handlers

import (
	"net/http"
	"time"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Tweets        TweetStore
	History       HistoryStore
	Media         MediaUploader
	Profiles      ProfileComposer
	DB            Pinger
	AuthLimiter   RateLimiter
	NowFunc       func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	users := UserHandler{
		Users:    deps.Users,
		Sessions: deps.Sessions,
		Media:    deps.Media,
		Profiles: deps.Profiles,
		History:  deps.History,
		Limiter:  deps.AuthLimiter,
		NowFunc:  deps.NowFunc,
	}
	videos := VideoHandler{
		Videos:   deps.Videos,
		Media:    deps.Media,
		Sessions: deps.Sessions,
		Profiles: deps.Profiles,
		NowFunc:  deps.NowFunc,
	}
	comments := CommentHandler{Comments: deps.Comments, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	likes := LikeHandler{Likes: deps.Likes, Sessions: deps.Sessions}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Sessions: deps.Sessions}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	tweets := TweetHandler{Tweets: deps.Tweets, Sessions: deps.Sessions, NowFunc: deps.NowFunc}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/logout", users.Logout)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshSession)
	mux.HandleFunc("POST /api/v1/users/change-password", users.ChangePassword)
	mux.HandleFunc("GET /api/v1/users/me", users.Me)
	mux.HandleFunc("PATCH /api/v1/users/me", users.UpdateDetails)
	mux.HandleFunc("PATCH /api/v1/users/me/avatar", users.UpdateAvatar)
	mux.HandleFunc("PATCH /api/v1/users/me/cover", users.UpdateCoverImage)
	mux.HandleFunc("GET /api/v1/users/me/history", users.WatchHistory)
	mux.HandleFunc("GET /api/v1/users/channel/{username}", users.Channel)

	mux.HandleFunc("POST /api/v1/videos", videos.Publish)
	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Detail)
	mux.HandleFunc("PATCH /api/v1/videos/{id}", videos.Update)
	mux.HandleFunc("DELETE /api/v1/videos/{id}", videos.Delete)
	mux.HandleFunc("PATCH /api/v1/videos/{id}/toggle-publish", videos.TogglePublish)

	mux.HandleFunc("GET /api/v1/videos/{id}/comments", comments.ListForVideo)
	mux.HandleFunc("POST /api/v1/videos/{id}/comments", comments.Create)
	mux.HandleFunc("PATCH /api/v1/comments/{id}", comments.Update)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", comments.Delete)

	mux.HandleFunc("POST /api/v1/likes/video/{id}/toggle", likes.ToggleVideo)
	mux.HandleFunc("POST /api/v1/likes/comment/{id}/toggle", likes.ToggleComment)
	mux.HandleFunc("POST /api/v1/likes/tweet/{id}/toggle", likes.ToggleTweet)
	mux.HandleFunc("GET /api/v1/likes/videos", likes.LikedVideos)

	mux.HandleFunc("POST /api/v1/subscriptions/channel/{channelId}/toggle", subscriptions.Toggle)
	mux.HandleFunc("GET /api/v1/subscriptions/channel/{channelId}/subscribers", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/user/{userId}/channels", subscriptions.SubscribedChannels)

	mux.HandleFunc("POST /api/v1/playlists", playlists.Create)
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", playlists.ListForUser)
	mux.HandleFunc("GET /api/v1/playlists/{id}", playlists.Get)
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", playlists.Update)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", playlists.Delete)
	mux.HandleFunc("PATCH /api/v1/playlists/{id}/videos/{videoId}", playlists.AddVideo)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/videos/{videoId}", playlists.RemoveVideo)

	mux.HandleFunc("POST /api/v1/tweets", tweets.Create)
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.ListForUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{id}", tweets.Update)
	mux.HandleFunc("DELETE /api/v1/tweets/{id}", tweets.Delete)
}
