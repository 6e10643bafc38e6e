package http

import (
	"net/http"

	"campusconnect/infrastructure/observability"
	wsDelivery "campusconnect/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

type RouteOptions struct {
	// DevToken mounts POST /auth/dev-token.
	DevToken bool
	// Health reports store readiness for GET /health. Nil means always ready.
	Health func(r *http.Request) error
}

func MapHttpRoutes(r chi.Router, httpHandler *HttpHandler, websocketHandler *wsDelivery.WebsocketHandler, authHandler *AuthHandler, authMiddleware *AuthMiddleware, opts RouteOptions) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, Response{Message: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, Response{Message: "ok"})
	})
	r.Handle("/metrics", observability.MetricsHandler())

	r.Route("/auth", func(r chi.Router) {
		if opts.DevToken {
			r.Post("/dev-token", authHandler.DevToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/sign-out", authHandler.SignOut)
			r.Get("/me", authHandler.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		if websocketHandler != nil {
			r.Get("/ws", websocketHandler.HandleWebSocket)
		}

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", httpHandler.ListChats)
			r.Post("/direct", httpHandler.EnsureDirectChat)
			r.Post("/group", httpHandler.CreateGroupChat)
			r.Get("/{chatId}", httpHandler.GetChat)
			r.Get("/{chatId}/messages", httpHandler.GetMessages)
			r.Post("/{chatId}/messages", httpHandler.SendMessage)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/online", httpHandler.GetOnlineUsers)
			r.Patch("/me", httpHandler.UpdateProfile)
			r.Get("/{id}", httpHandler.GetUser)
		})

		r.Route("/friend-requests", func(r chi.Router) {
			r.Post("/", httpHandler.SendFriendRequest)
			r.Get("/pending", httpHandler.ListPendingRequests)
			r.Get("/connections", httpHandler.ListConnections)
			r.Post("/{requestId}/accept", httpHandler.AcceptFriendRequest)
			r.Post("/{requestId}/reject", httpHandler.RejectFriendRequest)
			r.Delete("/{requestId}", httpHandler.Unfriend)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", httpHandler.CreateActivity)
			r.Get("/", httpHandler.ListActivities)
			r.Get("/volunteered", httpHandler.ListVolunteered)
			r.Post("/{activityId}/volunteer", httpHandler.Volunteer)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", httpHandler.Assign)
			r.Get("/mine", httpHandler.ListMyAssignments)
			r.Get("/community", httpHandler.ListCommunityAssignments)
			r.Post("/{assignmentId}/submit", httpHandler.SubmitAssignment)
			r.Post("/{assignmentId}/approve", httpHandler.ApproveAssignment)
			r.Post("/{assignmentId}/reject", httpHandler.RejectAssignment)
		})
	})
}
