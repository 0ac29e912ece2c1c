// Package server assembles the HTTP route table.
package server

import (
	"net/http"

	"github.com/dimitrije/gather-api/internal/handlers"
	authmw "github.com/dimitrije/gather-api/internal/middleware"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

// Handlers holds one handler per resource.
type Handlers struct {
	Users       *handlers.UserHandler
	Friends     *handlers.FriendHandler
	Groups      *handlers.GroupHandler
	Events      *handlers.EventHandler
	Schedules   *handlers.ScheduleHandler
	Invitations *handlers.InvitationHandler
	InvitePage  *handlers.InvitePageHandler
	Messages    *handlers.MessageHandler
	Locations   *handlers.LocationHandler
	SSE         *handlers.SSEHandler
}

// NewRouter mounts every /api/v1 route on a drift app. Routes other than
// health and the email response page require a bearer token.
func NewRouter(production bool, jwtService *services.JWTService, h Handlers) http.Handler {
	app := drift.New()

	if production {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	// Linked from invitation emails; the response token authorizes the request.
	api.Get("/invitations/:kind/:id/email-response", h.InvitePage.EmailResponse)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", h.Users.GetMe)
	protected.Patch("/users/me", h.Users.UpdateMe)

	protected.Get("/friends", h.Friends.List)
	protected.Post("/friends/:userId", h.Friends.Invite)
	protected.Delete("/friends/:userId", h.Friends.Remove)

	protected.Get("/groups", h.Groups.List)
	protected.Post("/groups", h.Groups.Create)
	protected.Get("/groups/:id", h.Groups.Get)
	protected.Patch("/groups/:id", h.Groups.Update)
	protected.Delete("/groups/:id", h.Groups.Delete)
	protected.Get("/groups/:id/members", h.Groups.Members)
	protected.Post("/groups/:id/members", h.Groups.InviteMembers)
	protected.Delete("/groups/:id/members/:userId", h.Groups.RemoveMember)
	protected.Post("/groups/:id/admins/:userId", h.Groups.AddAdmin)
	protected.Delete("/groups/:id/admins/:userId", h.Groups.RemoveAdmin)

	protected.Get("/events", h.Events.List)
	protected.Post("/events", h.Events.Create)
	protected.Get("/events/:id", h.Events.Get)
	protected.Patch("/events/:id", h.Events.Update)
	protected.Post("/events/:id/cancel", h.Events.Cancel)
	protected.Get("/events/:id/participants", h.Events.People)
	protected.Post("/events/:id/participants", h.Events.InviteParticipants)
	protected.Delete("/events/:id/participants/:userId", h.Events.RemoveParticipant)
	protected.Post("/events/:id/organisers/:userId", h.Events.AddOrganiser)
	protected.Delete("/events/:id/organisers/:userId", h.Events.RemoveOrganiser)
	protected.Post("/events/:id/schedule", h.Schedules.Create)

	protected.Get("/schedules/:id", h.Schedules.Get)
	protected.Delete("/schedules/:id", h.Schedules.Cancel)

	protected.Get("/invitations", h.Invitations.List)
	protected.Get("/invitations/:kind", h.Invitations.List)
	protected.Get("/invitations/:kind/:id", h.Invitations.Get)
	protected.Post("/invitations/:kind/:id/response", h.Invitations.Respond)
	protected.Delete("/invitations/:kind/:id", h.Invitations.Delete)

	protected.Get("/messages", h.Messages.List)
	protected.Post("/messages", h.Messages.Send)
	protected.Post("/messages/:id/read", h.Messages.MarkRead)

	protected.Get("/locations", h.Locations.ListSaved)
	protected.Post("/locations", h.Locations.Create)
	protected.Delete("/locations/:id", h.Locations.Unsave)

	protected.Get("/notifications/stream", h.SSE.Stream)

	return app
}
