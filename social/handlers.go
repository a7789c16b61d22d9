// social/handlers.go
package social

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handlers struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandlers(svc *Service, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{svc: svc, logger: logger}
}

func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/register", h.register).Methods("POST")
	r.HandleFunc("/login", h.login).Methods("POST")

	r.HandleFunc("/feed", h.getFeed).Methods("GET")
	r.HandleFunc("/posts", h.addPost).Methods("POST")
	r.HandleFunc("/posts/{id}", h.getPost).Methods("GET")
	r.HandleFunc("/posts/{id}/comments", h.commentPost).Methods("POST")
	r.HandleFunc("/posts/{id}/likes", h.likePost).Methods("POST")

	r.HandleFunc("/profile", h.getProfile).Methods("GET")
	r.HandleFunc("/users", h.searchUsers).Methods("GET")
	r.HandleFunc("/users/{id}", h.getUser).Methods("GET")
	r.HandleFunc("/users/{id}/follow", h.followUser).Methods("POST")

	return r
}

// bearerToken pulls the credential out of the Authorization header.
// Returns "" when the header is absent or not a bearer scheme; the
// service rejects empty credentials.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	code := CodeOf(err)
	status := code.HTTPStatus()
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  string(code),
	})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Register(r.Context(), req.Name, req.Username, req.Email, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "successfully added new user"})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *Handlers) getFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.GetFeed(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handlers) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPostByID(r.Context(), bearerToken(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) addPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
		ImgURL  string   `json:"img_url"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.AddPost(r.Context(), bearerToken(r), req.Content, req.Tags, req.ImgURL); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "successfully added post"})
}

func (h *Handlers) commentPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.CommentPost(r.Context(), bearerToken(r), mux.Vars(r)["id"], req.Content); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "successfully added comment"})
}

func (h *Handlers) likePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LikePost(r.Context(), bearerToken(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "successfully liked the post"})
}

func (h *Handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetUserByID(r.Context(), bearerToken(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) searchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.SearchUsers(r.Context(), bearerToken(r), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) followUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.FollowUser(r.Context(), bearerToken(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "follow success"})
}
