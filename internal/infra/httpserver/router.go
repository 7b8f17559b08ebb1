// Package httpserver is the local gateway: a thin HTTP surface over the
// application services so a browser UI can drive the same workflows as the
// CLI. It runs on loopback for a single user; the remote service still does
// all authorization.
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appcases "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/cases"
	applesions "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/lesions"
	appreport "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/report"
	appscan "github.com/YahyaMohamed3/Dermsense-sub000/internal/application/scan"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/analysis"
	domcases "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/cases"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	domlesions "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/patients"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/middleware"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/session"
)

type Router struct {
	sess       *session.Session
	auth       patients.Authenticator
	aggregator *applesions.Aggregator
	engine     *applesions.Engine
	review     *appcases.Service
	reports    *appreport.Service
	analyzer   analysis.Analyzer
	submitter  domcases.Submitter
	defVariant analysis.Variant

	mu       sync.Mutex
	workflow *appscan.Workflow
	variant  analysis.Variant // variant used for the current workflow's result
}

// Deps carries everything the gateway needs.
type Deps struct {
	Session        *session.Session
	Auth           patients.Authenticator
	Aggregator     *applesions.Aggregator
	Engine         *applesions.Engine
	Review         *appcases.Service
	Reports        *appreport.Service
	Analyzer       analysis.Analyzer
	Submitter      domcases.Submitter
	DefaultVariant analysis.Variant
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		sess:       d.Session,
		auth:       d.Auth,
		aggregator: d.Aggregator,
		engine:     d.Engine,
		review:     d.Review,
		reports:    d.Reports,
		analyzer:   d.Analyzer,
		submitter:  d.Submitter,
		defVariant: d.DefaultVariant,
		workflow:   appscan.NewWorkflow(d.Analyzer, d.Submitter),
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/auth/login", r.wrap(r.handleLogin))
		rt.Post("/auth/signup", r.wrap(r.handleSignup))
		rt.Post("/auth/logout", r.wrap(r.handleLogout))
		rt.Get("/me", r.wrap(r.handleMe))

		rt.Post("/scan/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/scan", r.wrap(r.handleScanState))
		rt.Post("/scan/submit", r.wrap(r.handleSubmit))
		rt.Post("/scan/reset-submission", r.wrap(r.handleResetSubmission))
		rt.Post("/scan/new", r.wrap(r.handleNewScan))
		rt.Post("/scan/report", r.wrap(r.handleReport))

		rt.Get("/dashboard", r.wrap(r.handleDashboard))
		rt.Post("/lesions", r.wrap(r.handleCreateLesion))
		rt.Delete("/lesions/{id}", r.wrap(r.handleDeleteLesion))
		rt.Get("/lesions/{id}/evolution", r.wrap(r.handleEvolution))

		rt.Get("/cases", r.wrap(r.handleCases))
		rt.Put("/cases/{id}/status", r.wrap(r.handleCaseStatus))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps taxonomy errors onto HTTP statuses. An auth error anywhere
// clears the session so every surface drops to logged-out at once.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		if derrors.IsAuth(err) {
			r.sess.Clear()
		}
		status := http.StatusInternalServerError
		switch derrors.KindOf(err) {
		case derrors.KindInvalidInput, derrors.KindValidation:
			status = http.StatusBadRequest
		case derrors.KindAuth:
			status = http.StatusUnauthorized
		case derrors.KindNetwork:
			status = http.StatusBadGateway
		case derrors.KindInsufficientData:
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

//
// ==== AUTH ====
//

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "malformed login body", err)
	}
	id, err := r.auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	r.sess.SetIdentity(*id)
	return writeJSON(w, http.StatusOK, id.Profile)
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "malformed signup body", err)
	}
	if err := r.auth.Signup(req.Context(), body.Email, body.Password, body.FullName); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "signup successful, check your email to verify the account"})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	r.sess.Clear()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	p, err := r.auth.Profile(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

//
// ==== SCAN ====
//

type scanView struct {
	State      appscan.State             `json:"state"`
	Result     *analysis.Result          `json:"result,omitempty"`
	Submission domcases.SubmissionStatus `json:"submission"`
}

func (r *Router) current() *appscan.Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workflow
}

func (r *Router) view() scanView {
	wf := r.current()
	return scanView{State: wf.State(), Result: wf.Result(), Submission: wf.SubmissionStatus()}
}

// POST /api/scan/analyze handles the multipart field "image" with an
// optional ?mode= query.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	// Cap the body before anything is buffered; the slack over the image
	// limit covers multipart framing. The workflow still owns the real
	// image-size check.
	req.Body = http.MaxBytesReader(w, req.Body, appscan.MaxImageBytes+1<<20)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "oversized or malformed multipart body", err)
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "missing image field", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "failed to read image", err)
	}

	variant := r.defVariant
	if m := req.URL.Query().Get("mode"); m != "" {
		variant = analysis.Variant(m)
	}

	img := appscan.Image{
		Name: header.Filename,
		MIME: header.Header.Get("Content-Type"),
		Data: data,
	}
	wf := r.current()
	if _, err := wf.Analyze(req.Context(), img, variant); err != nil {
		if errors.Is(err, appscan.ErrSuperseded) {
			// A newer upload owns the workflow now; report its view.
			return writeJSON(w, http.StatusOK, r.view())
		}
		return err
	}
	r.mu.Lock()
	r.variant = variant
	r.mu.Unlock()
	return writeJSON(w, http.StatusOK, r.view())
}

func (r *Router) handleScanState(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.view())
}

func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		LesionID *domlesions.ID `json:"lesion_id"`
	}
	if req.Body != nil {
		// Body is optional; an empty submit is a public case.
		_ = json.NewDecoder(req.Body).Decode(&body)
	}
	if err := r.current().SubmitForReview(req.Context(), body.LesionID); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, r.view())
}

func (r *Router) handleResetSubmission(w http.ResponseWriter, req *http.Request) error {
	r.current().ResetSubmission()
	return writeJSON(w, http.StatusOK, r.view())
}

// POST /api/scan/new replaces the workflow instance, the "start new
// analysis" action after a submitted case.
func (r *Router) handleNewScan(w http.ResponseWriter, req *http.Request) error {
	r.mu.Lock()
	r.workflow = appscan.NewWorkflow(r.analyzer, r.submitter)
	r.variant = ""
	r.mu.Unlock()
	return writeJSON(w, http.StatusOK, r.view())
}

func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	wf := r.current()
	res := wf.Result()
	if res == nil {
		return derrors.New(derrors.KindInvalidInput, "no analysis result to report")
	}
	r.mu.Lock()
	variant := r.variant
	r.mu.Unlock()
	loc, err := r.reports.Export(req.Context(), res, variant)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"location": loc})
}

//
// ==== LESIONS ====
//

// GET /api/dashboard falls back to the cached snapshot (flagged stale)
// when the live load fails for non-auth reasons.
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	dash, err := r.aggregator.LoadDashboard(req.Context())
	if err != nil {
		if derrors.IsAuth(err) {
			return err
		}
		cached, cerr := r.aggregator.CachedDashboard(req.Context())
		if cerr != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, cached)
	}
	return writeJSON(w, http.StatusOK, dash)
}

func (r *Router) handleCreateLesion(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Nickname string `json:"nickname"`
		BodyPart string `json:"body_part"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "malformed lesion body", err)
	}
	l, err := r.aggregator.Create(req.Context(), body.Nickname, body.BodyPart)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, l)
}

func (r *Router) handleDeleteLesion(w http.ResponseWriter, req *http.Request) error {
	id, err := lesionIDParam(req)
	if err != nil {
		return err
	}
	if err := r.aggregator.Delete(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *Router) handleEvolution(w http.ResponseWriter, req *http.Request) error {
	id, err := lesionIDParam(req)
	if err != nil {
		return err
	}
	ev, err := r.engine.Compare(req.Context(), id)
	if derrors.Is(err, derrors.KindInsufficientData) {
		// Render the timeline plus the notice instead of failing.
		return writeJSON(w, http.StatusOK, struct {
			*applesions.Evolution
			Insufficient bool `json:"insufficient"`
		}{ev, true})
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, ev)
}

func lesionIDParam(req *http.Request) (domlesions.ID, error) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, derrors.Newf(derrors.KindInvalidInput, "invalid lesion id %q", raw)
	}
	return domlesions.ID(id), nil
}

//
// ==== CASES ====
//

func (r *Router) handleCases(w http.ResponseWriter, req *http.Request) error {
	list, err := r.review.List(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func (r *Router) handleCaseStatus(w http.ResponseWriter, req *http.Request) error {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return derrors.Newf(derrors.KindInvalidInput, "invalid case id %q", raw)
	}
	var body struct {
		Status domcases.Status `json:"status"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return derrors.Wrap(derrors.KindInvalidInput, "malformed status body", err)
	}
	updated, err := r.review.Review(req.Context(), domcases.ID(id), body.Status, body.Notes)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, updated)
}
