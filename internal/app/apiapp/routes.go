package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/app/engine"
	"github.com/ivankudzin/matchcore/internal/metrics"
	mediasvc "github.com/ivankudzin/matchcore/internal/services/media"
	ratesvc "github.com/ivankudzin/matchcore/internal/services/rate"
	"github.com/ivankudzin/matchcore/internal/transport/http/handlers"
)

type Dependencies struct {
	Engine  *engine.Engine
	Media   *mediasvc.Service
	Limiter *ratesvc.Limiter
	Tokens  TokenParser
	Logger  *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	e := deps.Engine
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(e.Profiles, e.Ledger, deps.Media, deps.Logger)
	discoveryHandler := handlers.NewDiscoveryHandler(e.Matching, deps.Media)
	relationsHandler := handlers.NewRelationsHandler(e.Ledger, deps.Limiter, deps.Media, deps.Logger)
	groupsHandler := handlers.NewGroupsHandler(e.Groups, e.Moderation, deps.Limiter, deps.Logger)
	moderationHandler := handlers.NewModerationHandler(e.Moderation, deps.Limiter, deps.Logger)
	authMW := AuthMiddleware(deps.Tokens, e.Profiles, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Post("/profiles", profileHandler.Register)
		r.Get("/profiles/me", profileHandler.Me)
		r.Put("/profiles/me", profileHandler.Update)
		r.Delete("/profiles/me", profileHandler.DeleteMe)
		r.Post("/profiles/me/avatar", profileHandler.Avatar)
		r.Get("/profiles/{id}", profileHandler.Get)
		r.Post("/profiles/{id}/complaints", moderationHandler.ComplainProfile)

		r.Route("/discovery", func(r chi.Router) {
			r.Get("/latest", discoveryHandler.Latest)
			r.Post("/search", discoveryHandler.Search)
			r.Post("/by-ids", discoveryHandler.ByIDs)
			r.Get("/by-name", discoveryHandler.ByName)
			r.Get("/bookmarked", discoveryHandler.Bookmarked)
			r.Get("/bookmarked-by", discoveryHandler.BookmarkedBy)
			r.Get("/visited-by", discoveryHandler.VisitedBy)
			r.Get("/liked-by", discoveryHandler.LikedBy)
		})

		r.Get("/bookmarks", relationsHandler.Bookmarks)
		r.Post("/bookmarks", relationsHandler.AddBookmarks)
		r.Post("/bookmarks/remove", relationsHandler.RemoveBookmarks)
		r.Post("/bookmarks/block", relationsHandler.BlockBookmarkers)
		r.Post("/likes", relationsHandler.AddLikes)
		r.Post("/likes/remove", relationsHandler.RemoveLikes)
		r.Post("/contacts", relationsHandler.AddContacts)
		r.Post("/contacts/remove", relationsHandler.RemoveContacts)
		r.Post("/contacts/block", relationsHandler.BlockContacts)
		r.Post("/visitors/remove", relationsHandler.RemoveVisitors)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupsHandler.Create)
			r.Get("/", groupsHandler.Owned)
			r.Get("/{id}", groupsHandler.Get)
			r.Post("/{id}/members", groupsHandler.AddMembers)
			r.Post("/{id}/members/remove", groupsHandler.RemoveMembers)
			r.Post("/{id}/members/block", groupsHandler.BlockMembers)
			r.Post("/{id}/members/{memberID}/complaints", groupsHandler.Complain)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Delete("/profiles/{id}", profileHandler.Delete)
			r.Put("/profiles/{id}/admin", profileHandler.SetAdmin)
			r.Get("/profiles/{id}/complaints", moderationHandler.Active)
			r.Get("/profiles/{id}/complaints/history", moderationHandler.History)
			r.Post("/groups/{id}/members/{memberID}/unblock", groupsHandler.Unblock)
		})
	})
}
