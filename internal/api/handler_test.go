package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorcore/internal/app"
	"github.com/abhisek/tutorcore/internal/config"
	"github.com/abhisek/tutorcore/internal/store/storetest"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	st := storetest.Open(t)
	storetest.Seed(t, st.Curriculum(), storetest.Curriculum{UserID: "u1", TopicID: "t1", Concepts: []int{1, 1}})

	cfg := &config.Config{
		Review:     config.ReviewConfig{SessionCap: 20, DesiredRetention: 0.9},
		Difficulty: config.DifficultyConfig{Window: 20, RecentWindow: 10},
	}
	a := app.New(cfg, st, nil, app.Options{Now: func() time.Time { return t0 }})
	return a.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec)
	e, ok := env["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return e["code"].(string)
}

func shallowAnswer(subtopic string) map[string]any {
	return map[string]any{
		"question_id":       "q1",
		"user_id":           "u1",
		"session_id":        "s1",
		"topic_id":          "t1",
		"subtopic_id":       subtopic,
		"is_correct":        true,
		"depth":             "SHALLOW",
		"hints_used":        0,
		"time_to_answer_ms": 1500,
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestAnswerFlow(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/answers", shallowAnswer("t1-s0"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	m := out["mastery"].(map[string]any)
	assert.EqualValues(t, 70, m["subtopic_mastery"])
	assert.EqualValues(t, 35, m["topic_mastery"])
	assert.NotNil(t, out["unlocked"])

	rec = do(t, h, http.MethodGet, "/api/v1/topics/t1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode(t, rec)
	subs := sum["subtopics"].([]any)
	require.Len(t, subs, 2)
	assert.Equal(t, false, subs[1].(map[string]any)["is_locked"])
	assert.EqualValues(t, 1, sum["reviews_due"])

	rec = do(t, h, http.MethodGet, "/api/v1/topics/t1/next-action", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review", decode(t, rec)["type"])

	rec = do(t, h, http.MethodPost, "/api/v1/topics/t1/mastery", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recalc := decode(t, rec)
	assert.EqualValues(t, 35, recalc["mastery_percentage"])
	assert.NotContains(t, recalc, "unlocked", "last subtopic is already open")
}

func TestAnswerErrors(t *testing.T) {
	h := newServer(t)

	bad := shallowAnswer("t1-s0")
	bad["depth"] = "PROFOUND"
	rec := do(t, h, http.MethodPost, "/api/v1/answers", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))

	unknown := shallowAnswer("t1-s0")
	unknown["mood"] = "happy"
	rec = do(t, h, http.MethodPost, "/api/v1/answers", unknown)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/v1/answers", shallowAnswer("nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/topics/nope/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestReviewFlow(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/reviews", map[string]any{
		"user_id": "u1", "type": "TOPIC", "topic_id": "t1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)

	rec = do(t, h, http.MethodPost, "/api/v1/reviews", map[string]any{
		"user_id": "u1", "type": "TOPIC", "topic_id": "t1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode(t, rec)["id"])

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/reviews/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/reviews/due?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode(t, rec)["reviews"].([]any)
	require.Len(t, reviews, 1)
	assert.Equal(t, id, reviews[0].(map[string]any)["id"])

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/reviews/due?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/reviews/"+id+"/rating", map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/reviews/"+id+"/rating", map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode(t, rec)
	assert.Equal(t, "GRADUATED", res["new_status"])
	assert.EqualValues(t, 1, res["reps"])

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/reviews/count", nil)
	assert.EqualValues(t, 0, decode(t, rec)["count"])

	rec = do(t, h, http.MethodPost, "/api/v1/reviews/missing/rating", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/reviews", map[string]any{
		"user_id": "u1", "type": "CHAPTER", "topic_id": "t1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDifficulty(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/users/u1/difficulty?topic_id=t1&current=4", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec1 := decode(t, rec)
	assert.Equal(t, false, rec1["sufficient_data"])
	assert.EqualValues(t, 4, rec1["next"])

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/difficulty?current=9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/users/u1/difficulty?current=hard", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_difficulty", errorCode(t, rec))
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/answers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
