package handlers

import (
	"net/http"

	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/validate"
	"github.com/go-chi/chi/v5"
)

// Deps bundles the collaborators the route trees are built from.
type Deps struct {
	Users    *services.UserService
	Posts    *services.PostService
	Comments *services.CommentService
	Tokens   *auth.TokenService
	Log      logging.Logger
	Dev      bool
}

// Home greets callers of the root route.
func Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "welcome to the blog home page!"})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

// NotFound answers unmatched routes with the API's JSON error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeNotFound(w, "not found")
}

// PublicRouter registers the public tier: open reads of published content,
// account routes, and authenticated management of one's own comments.
//
// On every mutating route the validation middleware runs before the
// authorization gate, so a bad body is reported as a 400 batch even when no
// token is presented.
func PublicRouter(r chi.Router, deps Deps) {
	authHandler := NewAuthHandler(deps.Users, deps.Tokens, deps.Log, deps.Dev)
	postHandler := NewPostHandler(deps.Posts, deps.Log, deps.Dev)
	commentHandler := NewCommentHandler(deps.Comments, deps.Posts, deps.Log, deps.Dev)

	requireUser := RequireUser(deps.Tokens)

	r.With(validation(validate.SignUp())).Post("/sign-up", authHandler.SignUp)
	r.With(validation(validate.LogIn())).Post("/log-in", authHandler.LogIn)

	r.Get("/posts", postHandler.ListPublished)
	r.Route("/posts/{postID}", func(r chi.Router) {
		r.Get("/", postHandler.GetPublished)
		r.Get("/cover", postHandler.GetPublishedCover)
		r.Get("/comments", commentHandler.List(true))
		r.With(validation(validate.Comment()), requireUser).
			Post("/comments", commentHandler.Create(true))
		r.With(validation(validate.Comment()), requireUser).
			Put("/comments/{commentID}/update", commentHandler.Update(true))
		r.With(requireUser).
			Delete("/comments/{commentID}/delete", commentHandler.Delete(true))
	})
}

// PrivateRouter registers the admin tier: everything behind the elevated
// gate except log-in, with drafts visible and post authoring enabled.
func PrivateRouter(r chi.Router, deps Deps) {
	authHandler := NewAuthHandler(deps.Users, deps.Tokens, deps.Log, deps.Dev)
	postHandler := NewPostHandler(deps.Posts, deps.Log, deps.Dev)
	commentHandler := NewCommentHandler(deps.Comments, deps.Posts, deps.Log, deps.Dev)

	requireAdmin := RequireAdmin(deps.Tokens)

	r.With(validation(validate.LogIn())).Post("/log-in", authHandler.AdminLogIn)

	r.With(requireAdmin).Get("/posts", postHandler.List)
	r.With(validation(validate.Post()), requireAdmin).Post("/posts/create", postHandler.Create)
	r.Route("/posts/{postID}", func(r chi.Router) {
		r.With(requireAdmin).Get("/", postHandler.Get)
		r.With(validation(validate.Post()), requireAdmin).Put("/update", postHandler.Update)
		r.With(requireAdmin).Delete("/delete", postHandler.Delete)

		r.With(requireAdmin).Put("/cover", postHandler.UploadCover)
		r.With(requireAdmin).Delete("/cover", postHandler.DeleteCover)

		r.With(requireAdmin).Get("/comments", commentHandler.List(false))
		r.With(validation(validate.Comment()), requireAdmin).
			Post("/comments", commentHandler.Create(false))
		r.With(validation(validate.Comment()), requireAdmin).
			Put("/comments/{commentID}/update", commentHandler.Update(false))
		r.With(requireAdmin).
			Delete("/comments/{commentID}/delete", commentHandler.Delete(false))
	})
}
