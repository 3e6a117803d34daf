// Package api exposes the learning-progress engine over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apierr"
	"github.com/abhisek/tutorcore/internal/difficulty"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/mastery"
	"github.com/abhisek/tutorcore/internal/progression"
	"github.com/abhisek/tutorcore/internal/spacedrep"
	"github.com/abhisek/tutorcore/internal/store"
	"github.com/abhisek/tutorcore/internal/tracker"
)

// Services are the engine components the handler delegates to.
type Services struct {
	Tracker     *tracker.Tracker
	Mastery     *mastery.Calculator
	Progression *progression.Service
	Reviews     *spacedrep.Queue
	Difficulty  *difficulty.Adjuster
}

// Handler serves all API endpoints.
type Handler struct {
	svc Services
	log *logger.Logger

	// Now is used for overdue calculations in responses.
	Now func() time.Time
}

// NewHandler creates a handler over svc.
func NewHandler(svc Services, log *logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: logger.OrNop(log).With("component", "api"),
		Now: time.Now,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":    "ok",
		"timestamp": h.Now().UTC(),
	}, http.StatusOK)
}

// === Answers and progress ===

type answerRequest struct {
	tracker.AnswerInput
	TimeToAnswerMs *int64 `json:"time_to_answer_ms,omitempty"`
}

func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	in := req.AnswerInput
	if req.TimeToAnswerMs != nil {
		d := time.Duration(*req.TimeToAnswerMs) * time.Millisecond
		in.TimeToAnswer = &d
	}

	out, err := h.svc.Tracker.RecordAnswer(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, out, http.StatusCreated)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Progression.ProgressSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, sum, http.StatusOK)
}

func (h *Handler) GetNextAction(w http.ResponseWriter, r *http.Request) {
	action, err := h.svc.Progression.NextAction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, action, http.StatusOK)
}

// RecalculateMastery recomputes every subtopic of a topic and the topic
// itself, then opens at most one subtopic after the last unlocked one.
func (h *Handler) RecalculateMastery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topicID := mux.Vars(r)["id"]

	pct, err := h.svc.Mastery.CalculateTopicMastery(ctx, topicID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	unlocked, err := h.svc.Progression.UnlockNext(ctx, topicID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := map[string]any{
		"topic_id":           topicID,
		"mastery_percentage": pct,
	}
	if unlocked != nil {
		resp["unlocked"] = unlocked.ID
	}
	jsonResponse(w, resp, http.StatusOK)
}

// === Reviews ===

type reviewCardView struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Type           store.CardType   `json:"type"`
	TopicID        string           `json:"topic_id"`
	SubtopicID     string           `json:"subtopic_id,omitempty"`
	ConceptID      string           `json:"concept_id,omitempty"`
	State          store.CardState  `json:"state"`
	Status         store.CardStatus `json:"status"`
	Reps           int              `json:"reps"`
	Lapses         int              `json:"lapses"`
	NextReview     time.Time        `json:"next_review"`
	LastReviewed   *time.Time       `json:"last_reviewed,omitempty"`
	Retrievability float64          `json:"retrievability"`
	OverdueDays    float64          `json:"overdue_days"`
}

func (h *Handler) view(c store.ReviewCard) reviewCardView {
	now := h.Now()
	return reviewCardView{
		ID:             c.ID,
		UserID:         c.UserID,
		Type:           c.Type,
		TopicID:        c.TopicID,
		SubtopicID:     c.SubtopicID,
		ConceptID:      c.ConceptID,
		State:          c.State,
		Status:         c.Status,
		Reps:           c.Reps,
		Lapses:         c.Lapses,
		NextReview:     c.NextReview,
		LastReviewed:   c.LastReviewed,
		Retrievability: spacedrep.CalculateRetention(c, now),
		OverdueDays:    spacedrep.OverdueDays(c, now),
	}
}

func (h *Handler) GetReviewsDue(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, r, apierr.New(http.StatusBadRequest, "invalid_limit", errors.Errorf("limit %q", raw)))
			return
		}
		limit = n
	}

	cards, err := h.svc.Reviews.GetReviewsDue(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	views := make([]reviewCardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, h.view(c))
	}
	jsonResponse(w, map[string]any{"reviews": views}, http.StatusOK)
}

func (h *Handler) CountReviewsDue(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Reviews.CountReviewsDue(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, map[string]int{"count": n}, http.StatusOK)
}

type createReviewRequest struct {
	UserID     string `json:"user_id"`
	Type       string `json:"type"`
	TopicID    string `json:"topic_id"`
	SubtopicID string `json:"subtopic_id,omitempty"`
	ConceptID  string `json:"concept_id,omitempty"`
}

func (h *Handler) CreateReviewItem(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	typ, err := store.ParseCardType(req.Type)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	card, created, err := h.svc.Reviews.CreateReviewItem(r.Context(), spacedrep.ReviewItemSpec{
		UserID:     req.UserID,
		Type:       typ,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
		ConceptID:  req.ConceptID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	jsonResponse(w, h.view(*card), status)
}

func (h *Handler) RateReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.svc.Reviews.RecordReview(r.Context(), mux.Vars(r)["id"], req.Rating)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, res, http.StatusOK)
}

// === Difficulty ===

func (h *Handler) GetDifficulty(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	current := difficulty.DefaultDifficulty
	if raw := q.Get("current"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, apierr.New(http.StatusBadRequest, "invalid_difficulty", errors.Errorf("current %q", raw)))
			return
		}
		current = n
	}

	rec, err := h.svc.Difficulty.Recommend(r.Context(), mux.Vars(r)["id"], difficulty.Scope{
		TopicID:    q.Get("topic_id"),
		SubtopicID: q.Get("subtopic_id"),
	}, current)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, rec, http.StatusOK)
}
