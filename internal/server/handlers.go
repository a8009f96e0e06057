package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/models"

	"github.com/go-chi/chi/v5"
)

type categoryView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type resultsView struct {
	Category   string                  `json:"category"`
	Answers    models.AnswerSet        `json:"answers"`
	Results    []models.ScoredProvider `json:"results"`
	MatchCount int                     `json:"matchCount"`
	NoMatches  bool                    `json:"noMatches"`
}

func (a *api) listCategories(w http.ResponseWriter, _ *http.Request) {
	cats := catalog.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		cat, err := catalog.Get(c.ID)
		if err != nil {
			continue
		}
		out = append(out, categoryView{
			ID:        c.ID,
			Name:      c.Name,
			Questions: len(cat.Questions(models.AnswerSet{})),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// open resolves the category path parameter and acquires the caller's funnel.
func (a *api) open(w http.ResponseWriter, r *http.Request) (*session, bool) {
	category := chi.URLParam(r, "category")
	if _, err := catalog.Get(category); err != nil {
		a.writeError(w, r, funnel.Error{Category: category}.Standardize(err))
		return nil, false
	}
	sess, err := a.sessions.acquire(r.Context(), sessionFromContext(r.Context()), userFromContext(r.Context()), category)
	if err != nil {
		a.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (a *api) getFunnel(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.open(w, r)
	if !ok {
		return
	}
	defer sess.release()
	writeJSON(w, http.StatusOK, funnel.VariablesFrom(sess.ctrl.Snapshot()))
}

func (a *api) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, errors.NewInvalidInputError("request body must be a JSON object: "+err.Error()))
		return
	}
	if req.QuestionID == "" || req.Value == "" {
		a.writeError(w, r, errors.NewInvalidInputError("questionId and value are required"))
		return
	}

	sess, ok := a.open(w, r)
	if !ok {
		return
	}
	defer sess.release()

	snap, err := a.service.Submit(r.Context(), sess.ctrl, req.QuestionID, req.Value)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, funnel.VariablesFrom(snap))
}

func (a *api) resetFunnel(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.open(w, r)
	if !ok {
		return
	}
	defer sess.release()

	snap, err := sess.ctrl.Reset(r.Context())
	if err != nil {
		a.writeError(w, r, errors.NewSlotUnavailableError(err))
		return
	}
	writeJSON(w, http.StatusOK, funnel.VariablesFrom(snap))
}

func (a *api) getResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.writeError(w, r, errors.NewInvalidInputError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	sess, ok := a.open(w, r)
	if !ok {
		return
	}
	category := sess.ctrl.Catalog().Category().ID
	answers := sess.ctrl.Answers()
	sess.release()

	ranked, err := a.service.Results(r.Context(), category, answers)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	matches := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	writeJSON(w, http.StatusOK, resultsView{
		Category:   category,
		Answers:    answers,
		Results:    ranked,
		MatchCount: matches,
		NoMatches:  matches == 0,
	})
}
