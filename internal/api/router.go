package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter builds the HTTP router for all endpoints.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Answers and progress
	api.HandleFunc("/answers", h.RecordAnswer).Methods("POST")
	api.HandleFunc("/topics/{id}/progress", h.GetProgress).Methods("GET")
	api.HandleFunc("/topics/{id}/next-action", h.GetNextAction).Methods("GET")
	api.HandleFunc("/topics/{id}/mastery", h.RecalculateMastery).Methods("POST")

	// Reviews
	api.HandleFunc("/users/{id}/reviews/due", h.GetReviewsDue).Methods("GET")
	api.HandleFunc("/users/{id}/reviews/count", h.CountReviewsDue).Methods("GET")
	api.HandleFunc("/reviews", h.CreateReviewItem).Methods("POST")
	api.HandleFunc("/reviews/{id}/rating", h.RateReview).Methods("POST")

	// Difficulty
	api.HandleFunc("/users/{id}/difficulty", h.GetDifficulty).Methods("GET")

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
