package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/domain"
)

// UserProvider resolves the authenticated user of a request.
type UserProvider interface {
	CurrentUser(r *http.Request) (domain.User, error)
}

// Options tunes the HTTP layer.
type Options struct {
	LoginURL      string
	SessionCookie string
	SessionTTL    time.Duration
	Logger        logrus.FieldLogger
}

// Handler serves the quiz, result and leaderboard endpoints.
type Handler struct {
	engine *app.QuizEngine
	ranker *app.LeaderboardRanker
	users  app.UserDirectory
	auth   UserProvider
	opts   Options
	log    logrus.FieldLogger
}

func NewHandler(engine *app.QuizEngine, ranker *app.LeaderboardRanker, users app.UserDirectory, provider UserProvider, opts Options) *Handler {
	if opts.LoginURL == "" {
		opts.LoginURL = "/login"
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = "quiz_session"
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{engine: engine, ranker: ranker, users: users, auth: provider, opts: opts, log: log}
}

// NewRouter wires every route; everything but /healthz requires a user.
func NewRouter(h *Handler, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(h.RequireUser)
	protected.HandleFunc("/quiz", h.Quiz).Methods(http.MethodGet, http.MethodPost)
	protected.HandleFunc("/result", h.Result).Methods(http.MethodGet)
	protected.HandleFunc("/leaderboard", h.Leaderboard).Methods(http.MethodGet)
	protected.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	if ws != nil {
		protected.HandleFunc("/leaderboard/ws", ws.ServeWS).Methods(http.MethodGet)
	}
	return r
}

// RequireUser redirects anonymous requests to the login page and refreshes
// the user's display name otherwise.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.CurrentUser(r)
		if err != nil {
			h.log.WithError(err).WithField("path", r.URL.Path).Debug("unauthenticated request")
			http.Redirect(w, r, h.opts.LoginURL, http.StatusSeeOther)
			return
		}
		if h.users != nil {
			if err := h.users.Upsert(r.Context(), user); err != nil {
				h.log.WithError(err).WithField("user", user.ID).Warn("user upsert failed")
			}
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

type quizResponse struct {
	Question domain.PublicQuestion `json:"question"`
	Current  int                   `json:"current"`
	Total    int                   `json:"total"`
	Answer   *domain.AnswerResult  `json:"answer,omitempty"`
}

type answerRequest struct {
	QuestionID    int64  `json:"questionId"`
	SelectedLabel string `json:"selectedLabel"`
}

type errorPayload struct {
	Message string `json:"error"`
}

// Quiz shows the current question (GET) or scores an answer first (POST).
// A finished quiz redirects to /result.
func (h *Handler) Quiz(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	key := h.stateKey(w, r, user)

	var sub *domain.Submission
	if r.Method == http.MethodPost {
		s, err := decodeSubmission(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
			return
		}
		sub = &s
	}

	step, err := h.engine.Advance(r.Context(), user, key, sub)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if step.Completion != nil {
		q := url.Values{}
		q.Set("score", strconv.Itoa(step.Completion.Score))
		q.Set("total", strconv.Itoa(step.Completion.Total))
		http.Redirect(w, r, "/result?"+q.Encode(), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{
		Question: step.Progress.Question,
		Current:  step.Progress.Current,
		Total:    step.Progress.Total,
		Answer:   step.Answer,
	})
}

// Result echoes the values produced by the completion redirect.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	score, err1 := queryInt(r, "score")
	total, err2 := queryInt(r, "total")
	if err := errors.Join(err1, err2); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, domain.Completion{
		Score:      score,
		Total:      total,
		Percentage: domain.Percentage(score, total),
	})
}

// Leaderboard returns the global top list and the caller's recent attempts.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	board, err := h.ranker.Board(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("leaderboard query failed")
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "leaderboard unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Logout drops the in-progress quiz and forgets the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	if c, err := r.Cookie(h.opts.SessionCookie); err == nil && c.Value != "" {
		if err := h.engine.Abandon(r.Context(), sessionKey(user, c.Value)); err != nil {
			h.writeEngineError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: h.opts.SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

// stateKey returns the session-store key for this request, issuing a session
// cookie when the browser has none. The user ID is part of the key so a shared
// browser never resumes another user's quiz.
func (h *Handler) stateKey(w http.ResponseWriter, r *http.Request, user domain.User) string {
	if c, err := r.Cookie(h.opts.SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return sessionKey(user, c.Value)
		}
	}
	sid := uuid.NewString()
	cookie := &http.Cookie{
		Name:     h.opts.SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.opts.SessionTTL > 0 {
		cookie.MaxAge = int(h.opts.SessionTTL / time.Second)
	}
	http.SetCookie(w, cookie)
	return sessionKey(user, sid)
}

func sessionKey(user domain.User, sid string) string {
	return user.ID + ":" + sid
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrScoreNotRecorded):
		h.log.WithError(err).Warn("completion not persisted")
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorPayload{Message: "your score could not be saved yet, please retry"})
	case errors.Is(err, domain.ErrNoActiveQuiz):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	default:
		h.log.WithError(err).Error("quiz request failed")
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func decodeSubmission(r *http.Request) (domain.Submission, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return domain.Submission{}, errors.New("invalid answer payload")
		}
		return domain.Submission{QuestionID: req.QuestionID, SelectedLabel: req.SelectedLabel}, nil
	}

	id, err := strconv.ParseInt(r.FormValue("questionId"), 10, 64)
	if err != nil {
		return domain.Submission{}, errors.New("questionId must be an integer")
	}
	return domain.Submission{QuestionID: id, SelectedLabel: r.FormValue("selectedLabel")}, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
