package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/events"
	"github.com/aoki-blog/apiserver/internal/handlers"
	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// --- in-memory fakes for the repository interfaces ---

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
	writes int
	reads  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.reads++
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.reads++
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.writes++
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

type fakePostRepo struct {
	posts  map[int]types.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int]types.Post{}, nextID: 1}
}

func (r *fakePostRepo) List(_ context.Context) ([]types.Post, error) {
	return r.collect(func(types.Post) bool { return true }), nil
}

func (r *fakePostRepo) ListPublished(_ context.Context) ([]types.Post, error) {
	return r.collect(func(p types.Post) bool { return p.IsPublished }), nil
}

func (r *fakePostRepo) collect(keep func(types.Post) bool) []types.Post {
	posts := make([]types.Post, 0)
	for _, post := range r.posts {
		if keep(post) {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

func (r *fakePostRepo) Get(_ context.Context, id int) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	post.ID = r.nextID
	r.nextID++
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(_ context.Context, post types.Post) (types.Post, error) {
	existing, ok := r.posts[post.ID]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	existing.Title = post.Title
	existing.Overview = post.Overview
	existing.Text = post.Text
	existing.IsPublished = post.IsPublished
	r.posts[post.ID] = existing
	return existing, nil
}

func (r *fakePostRepo) SetCoverKey(_ context.Context, id int, key string) error {
	post, ok := r.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	post.CoverKey = key
	r.posts[id] = post
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[int]types.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[int]types.Comment{}, nextID: 1}
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID int) ([]types.Comment, error) {
	comments := make([]types.Comment, 0)
	for _, comment := range r.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (r *fakeCommentRepo) Get(_ context.Context, id int) (types.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return comment, nil
}

func (r *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = r.nextID
	r.nextID++
	r.comments[comment.ID] = comment
	return comment, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment types.Comment) (types.Comment, error) {
	existing, ok := r.comments[comment.ID]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	existing.Text = comment.Text
	r.comments[comment.ID] = existing
	return existing, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByPost(_ context.Context, postID int) error {
	for id, comment := range r.comments {
		if comment.PostID == postID {
			delete(r.comments, id)
		}
	}
	return nil
}

// --- test environment ---

type testEnv struct {
	router   *chi.Mux
	users    *fakeUserRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logging.New(false)
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	publisher := events.NewPublisher(nil, log)

	users := newFakeUserRepo()
	posts := newFakePostRepo()
	comments := newFakeCommentRepo()

	deps := handlers.Deps{
		Users:    services.NewUserService(users),
		Posts:    services.NewPostService(posts, comments, nil, publisher, log),
		Comments: services.NewCommentService(comments, publisher),
		Tokens:   tokens,
		Log:      log,
	}

	router := chi.NewRouter()
	router.Route("/api/public", func(r chi.Router) {
		handlers.PublicRouter(r, deps)
	})
	router.Route("/api/private", func(r chi.Router) {
		handlers.PrivateRouter(r, deps)
	})

	return &testEnv{
		router:   router,
		users:    users,
		posts:    posts,
		comments: comments,
		tokens:   tokens,
	}
}

func (e *testEnv) addUser(t *testing.T, fullName, email, password string, isAdmin bool) types.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := e.users.Create(context.Background(), types.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) addPost(t *testing.T, author types.User, published bool) types.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), types.Post{
		Title:       "a post",
		Overview:    "an overview",
		Text:        "some text",
		IsPublished: published,
		Author:      types.PrincipalOf(author).Snapshot(),
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func (e *testEnv) addComment(t *testing.T, author types.User, post types.Post, text string) types.Comment {
	t.Helper()
	comment, err := e.comments.Create(context.Background(), types.Comment{
		Text:   text,
		Author: types.PrincipalOf(author).Snapshot(),
		PostID: post.ID,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}

func (e *testEnv) tokenFor(t *testing.T, user types.User) string {
	t.Helper()
	token, err := e.tokens.Issue(types.PrincipalOf(user))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

// --- sign-up and log-in ---

func TestSignUp_CreatesUserWithoutEchoingSecrets(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/public/sign-up", "", map[string]any{
		"fullName": "A",
		"email":    "a@x.com",
		"password": "secret1",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "secret1") {
		t.Fatalf("response must not echo the password: %s", resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "passwordHash") {
		t.Fatalf("response must not expose the password hash: %s", resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("expected a token in the response")
	}

	stored, err := env.users.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if !auth.CheckPassword("secret1", stored.PasswordHash) {
		t.Fatalf("stored hash does not verify the password")
	}
	if stored.IsAdmin {
		t.Fatalf("sign-up must never create an administrator")
	}
}

func TestSignUp_ValidationFailureNeverReachesStore(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/public/sign-up", "", map[string]any{
		"fullName": "A",
		"email":    "a@x.com",
		"password": "",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	errs, _ := body["validationErrors"].([]any)
	var sawPassword bool
	for _, raw := range errs {
		if e, ok := raw.(map[string]any); ok && e["field"] == "password" {
			sawPassword = true
		}
	}
	if !sawPassword {
		t.Fatalf("expected a password validation error, got %v", body)
	}
	if _, ok := body["postVals"]; !ok {
		t.Fatalf("expected raw values echoed back, got %v", body)
	}

	if env.users.reads != 0 || env.users.writes != 0 {
		t.Fatalf("store touched on validation failure: reads=%d writes=%d", env.users.reads, env.users.writes)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.addUser(t, "A", "a@x.com", "secret1", false)

	resp := env.do(t, http.MethodPost, "/api/public/sign-up", "", map[string]any{
		"fullName": "Another A",
		"email":    "a@x.com",
		"password": "secret2",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if body := decodeBody(t, resp); body["error"] != "email already registered" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLogIn_WrongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.addUser(t, "A", "a@x.com", "secret1", false)

	resp := env.do(t, http.MethodPost, "/api/public/log-in", "", map[string]any{
		"email":    "a@x.com",
		"password": "wrong-1",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if body := decodeBody(t, resp); body["error"] != "wrong password" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLogIn_Success(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.addUser(t, "A", "a@x.com", "secret1", false)

	resp := env.do(t, http.MethodPost, "/api/public/log-in", "", map[string]any{
		"email":    "a@x.com",
		"password": "secret1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	principal, err := env.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if principal.ID != user.ID || principal.IsAdmin {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAdminLogIn_RejectsNonAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.addUser(t, "A", "a@x.com", "secret1", false)

	resp := env.do(t, http.MethodPost, "/api/private/log-in", "", map[string]any{
		"email":    "a@x.com",
		"password": "secret1",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if body := decodeBody(t, resp); body["error"] != "unauthorized" {
		t.Fatalf("unexpected body: %v", body)
	}
}

// --- authorization gate ---

func TestCreatePost_RequiresElevatedPrincipal(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	reader := env.addUser(t, "Reader", "r@x.com", "secret1", false)

	postBody := map[string]any{
		"title":       "t",
		"overview":    "o",
		"text":        "x",
		"isPublished": true,
	}

	resp := env.do(t, http.MethodPost, "/api/private/posts/create", env.tokenFor(t, reader), postBody)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin create: status = %d, body %s", resp.Code, resp.Body.String())
	}
	if len(env.posts.posts) != 0 {
		t.Fatalf("post must not be created")
	}

	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	resp = env.do(t, http.MethodPost, "/api/private/posts/create", env.tokenFor(t, admin), postBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d, body %s", resp.Code, resp.Body.String())
	}

	created := env.posts.posts[1]
	if created.Author.ID != admin.ID || created.Author.FullName != "Admin" {
		t.Fatalf("author snapshot not captured: %+v", created.Author)
	}
}

func TestAuthGate_MissingHeaderIsClientError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// A missing or malformed header is a 400, distinct from the 401 a bad
	// token gets.
	resp := env.do(t, http.MethodPost, "/api/private/posts/create", "", map[string]any{
		"title":       "t",
		"overview":    "o",
		"text":        "x",
		"isPublished": true,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("missing header: status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = env.do(t, http.MethodPost, "/api/private/posts/create", "not-a-valid-token", map[string]any{
		"title":       "t",
		"overview":    "o",
		"text":        "x",
		"isPublished": true,
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, body %s", resp.Code, resp.Body.String())
	}
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)

	shortLived := auth.NewTokenService([]byte("test-secret"), time.Nanosecond)
	token, err := shortLived.Issue(types.PrincipalOf(admin))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	resp := env.do(t, http.MethodGet, "/api/private/posts", token, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, body %s", resp.Code, resp.Body.String())
	}
}

func TestValidationRunsBeforeAuthGate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// No token at all, but a bad body: the validation batch wins.
	resp := env.do(t, http.MethodPost, "/api/private/posts/create", "", map[string]any{
		"title": "t",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if body := decodeBody(t, resp); body["validationErrors"] == nil {
		t.Fatalf("expected validation errors, got %v", body)
	}
}

// --- public visibility of unpublished posts ---

func TestUnpublishedPost_InvisibleOnPublicTier(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	env.addPost(t, admin, false)

	draftResp := env.do(t, http.MethodGet, "/api/public/posts/1", "", nil)
	missingResp := env.do(t, http.MethodGet, "/api/public/posts/999", "", nil)

	if draftResp.Code != http.StatusNotFound {
		t.Fatalf("draft: status = %d", draftResp.Code)
	}
	if draftResp.Body.String() != missingResp.Body.String() {
		t.Fatalf("draft response %q must match missing response %q",
			draftResp.Body.String(), missingResp.Body.String())
	}

	commentsResp := env.do(t, http.MethodGet, "/api/public/posts/1/comments", "", nil)
	if commentsResp.Code != http.StatusNotFound {
		t.Fatalf("draft comments: status = %d", commentsResp.Code)
	}

	// The admin tier still sees the draft.
	adminResp := env.do(t, http.MethodGet, "/api/private/posts/1", env.tokenFor(t, admin), nil)
	if adminResp.Code != http.StatusOK {
		t.Fatalf("admin view: status = %d, body %s", adminResp.Code, adminResp.Body.String())
	}
}

func TestPublicListing_OnlyPublishedPosts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	env.addPost(t, admin, true)
	env.addPost(t, admin, false)

	resp := env.do(t, http.MethodGet, "/api/public/posts", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	body := decodeBody(t, resp)
	posts, _ := body["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("expected 1 published post, got %d", len(posts))
	}
}

// --- comment ownership ---

func TestEditComment_OwnerOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	owner := env.addUser(t, "Owner", "o@x.com", "secret1", false)
	other := env.addUser(t, "Other", "b@x.com", "secret1", false)
	post := env.addPost(t, admin, true)
	comment := env.addComment(t, owner, post, "original")

	edit := map[string]any{"text": "edited"}
	path := "/api/public/posts/1/comments/1/update"

	// A stranger may not edit, and neither may an admin who is not the
	// author.
	resp := env.do(t, http.MethodPut, path, env.tokenFor(t, other), edit)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("stranger edit: status = %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "unauthorized" {
		t.Fatalf("unexpected body: %v", body)
	}

	adminPath := "/api/private/posts/1/comments/1/update"
	resp = env.do(t, http.MethodPut, adminPath, env.tokenFor(t, admin), edit)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("admin edit of foreign comment: status = %d", resp.Code)
	}

	resp = env.do(t, http.MethodPut, path, env.tokenFor(t, owner), edit)
	if resp.Code != http.StatusCreated {
		t.Fatalf("owner edit: status = %d, body %s", resp.Code, resp.Body.String())
	}

	stored, _ := env.comments.Get(context.Background(), comment.ID)
	if stored.Text != "edited" {
		t.Fatalf("comment not updated: %+v", stored)
	}
	if stored.Author.ID != owner.ID {
		t.Fatalf("author snapshot must never be reassigned: %+v", stored.Author)
	}
}

func TestDeleteComment_AuthorOrAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	owner := env.addUser(t, "Owner", "o@x.com", "secret1", false)
	other := env.addUser(t, "Other", "b@x.com", "secret1", false)
	post := env.addPost(t, admin, true)
	env.addComment(t, owner, post, "first")
	env.addComment(t, owner, post, "second")

	// A non-author non-admin may not delete.
	resp := env.do(t, http.MethodDelete, "/api/public/posts/1/comments/1/delete", env.tokenFor(t, other), nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("stranger delete: status = %d", resp.Code)
	}

	// The author may.
	resp = env.do(t, http.MethodDelete, "/api/public/posts/1/comments/1/delete", env.tokenFor(t, owner), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d, body %s", resp.Code, resp.Body.String())
	}

	// An admin moderates someone else's comment by deletion.
	resp = env.do(t, http.MethodDelete, "/api/private/posts/1/comments/2/delete", env.tokenFor(t, admin), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin delete: status = %d, body %s", resp.Code, resp.Body.String())
	}

	if len(env.comments.comments) != 0 {
		t.Fatalf("expected all comments deleted, have %d", len(env.comments.comments))
	}
}

func TestCreateComment_RequiresAuthentication(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	env.addPost(t, admin, true)

	resp := env.do(t, http.MethodPost, "/api/public/posts/1/comments", "", map[string]any{"text": "hi"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("anonymous comment: status = %d", resp.Code)
	}

	reader := env.addUser(t, "Reader", "r@x.com", "secret1", false)
	resp = env.do(t, http.MethodPost, "/api/public/posts/1/comments", env.tokenFor(t, reader), map[string]any{"text": "hi"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("authenticated comment: status = %d, body %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	comment, _ := body["comment"].(map[string]any)
	author, _ := comment["author"].(map[string]any)
	if author["fullName"] != "Reader" {
		t.Fatalf("expected author snapshot in response, got %v", body)
	}
}

func TestCommentOnWrongPost_NotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	postA := env.addPost(t, admin, true)
	env.addPost(t, admin, true)
	owner := env.addUser(t, "Owner", "o@x.com", "secret1", false)
	env.addComment(t, owner, postA, "on post A")

	// The comment exists but belongs to post 1, so addressing it under
	// post 2 is a miss, reported before any ownership decision.
	resp := env.do(t, http.MethodPut, "/api/public/posts/2/comments/1/update", env.tokenFor(t, owner), map[string]any{"text": "x"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
}

// --- post deletion cascade ---

func TestDeletePost_CascadesComments(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	reader := env.addUser(t, "Reader", "r@x.com", "secret1", false)
	post := env.addPost(t, admin, true)
	other := env.addPost(t, admin, true)
	env.addComment(t, reader, post, "one")
	env.addComment(t, reader, post, "two")
	kept := env.addComment(t, reader, other, "keep me")

	resp := env.do(t, http.MethodDelete, "/api/private/posts/1/delete", env.tokenFor(t, admin), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	if _, err := env.posts.Get(context.Background(), post.ID); err == nil {
		t.Fatalf("post must be deleted")
	}
	for _, comment := range env.comments.comments {
		if comment.PostID == post.ID {
			t.Fatalf("orphaned comment left behind: %+v", comment)
		}
	}
	if _, err := env.comments.Get(context.Background(), kept.ID); err != nil {
		t.Fatalf("comment on another post must survive: %v", err)
	}
}

// --- update status quirk ---

func TestUpdatePost_Returns201(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", "admin@x.com", "secret1", true)
	env.addPost(t, admin, false)

	resp := env.do(t, http.MethodPut, "/api/private/posts/1/update", env.tokenFor(t, admin), map[string]any{
		"title":       "new title",
		"overview":    "o",
		"text":        "x",
		"isPublished": true,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	stored, _ := env.posts.Get(context.Background(), 1)
	if stored.Title != "new title" || !stored.IsPublished {
		t.Fatalf("post not updated: %+v", stored)
	}
}
