// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest provides an in-process AGRINOVA backend for tests.
//
// The fake implements every endpoint the client uses with the same request
// and response shapes as the real service. Accounts are stored with bcrypt
// hashes and sessions are uuid cookies. Tests can override responses,
// delay handlers, and hold a handler open on a gate to order concurrent
// completions deterministically.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the session cookie the fake issues.
const SessionCookie = "session"

// Request is what the fake saw of one incoming request.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	RequestID string
	UserAgent string
	HasCookie bool
	Body      []byte
}

// Upload describes the file part of a /predict request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int
}

type account struct {
	id       int64
	username string
	email    string
	hash     []byte
}

type override struct {
	status int
	body   string
}

// Server is a fake AGRINOVA backend.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  []*account
	sessions  map[string]int64
	requests  []Request
	uploads   []Upload
	overrides map[string]override
	delays    map[string]time.Duration
	gates     map[string]chan struct{}
	arrivals  map[string]chan struct{}

	prediction map[string]interface{}
	weather    map[string]map[string]interface{}
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		sessions:  make(map[string]int64),
		overrides: make(map[string]override),
		delays:    make(map[string]time.Duration),
		gates:     make(map[string]chan struct{}),
		arrivals:  make(map[string]chan struct{}),
		prediction: map[string]interface{}{
			"prediction": "Apple_scab",
			"confidence": 0.8734,
		},
		weather: map[string]map[string]interface{}{
			"pune":  {"city": "Pune", "temperature": 29.5, "description": "clear sky", "humidity": 48, "wind_speed": 3.6},
			"delhi": {"city": "Delhi", "temperature": 34.1, "description": "haze", "humidity": 30, "wind_speed": 2.1},
		},
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.control)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "AGRINOVA AI Backend is running! All endpoints working.")
	})
	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/profile", s.handleProfile)
	r.Post("/predict", s.handlePredict)
	r.Get("/weather", s.handleWeather)
	r.Post("/chatbot", s.handleChat)
	r.Post("/market_price", s.handleMarket)
	return r
}

// =============================================================================
// CONTROLS
// =============================================================================

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(username, email, password string) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(username, email, hash)
}

func (s *Server) addLocked(username, email string, hash []byte) int64 {
	id := int64(len(s.accounts) + 1)
	s.accounts = append(s.accounts, &account{id: id, username: username, email: email, hash: hash})
	return id
}

// Respond makes every request to path answer with status and raw body.
// An empty body sends no content.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = override{status: status, body: body}
}

// Reset removes any Respond override for path.
func (s *Server) Reset(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, path)
}

// Delay makes requests to path sleep before being handled.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Gate holds every request to path until the returned release is called.
// Arrived receives once per request that reaches the gate.
func (s *Server) Gate(path string) (release func(), arrived <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	a := make(chan struct{}, 16)
	s.gates[path] = g
	s.arrivals[path] = a

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[path] == g {
				delete(s.gates, path)
			}
			s.mu.Unlock()
			close(g)
		})
	}, a
}

// SetPrediction changes the /predict success body.
func (s *Server) SetPrediction(label string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prediction = map[string]interface{}{"prediction": label, "confidence": confidence}
}

// Requests returns the recorded requests for path in arrival order.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Uploads returns the file parts received by /predict.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		_, cookieErr := r.Cookie(SessionCookie)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			RequestID: r.Header.Get("X-Request-ID"),
			UserAgent: r.Header.Get("User-Agent"),
			HasCookie: cookieErr == nil,
			Body:      body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) control(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		s.mu.Lock()
		delay := s.delays[path]
		gate := s.gates[path]
		arrived := s.arrivals[path]
		s.mu.Unlock()

		if gate != nil {
			select {
			case arrived <- struct{}{}:
			default:
			}
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		// Read after waiting so a test can change the answer while gated.
		s.mu.Lock()
		ov, hasOverride := s.overrides[path]
		s.mu.Unlock()

		if hasOverride {
			if ov.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(ov.status)
			_, _ = io.WriteString(w, ov.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) currentUser(r *http.Request) *account {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	for _, a := range s.accounts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide username, email and password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.username == req.Username || a.email == req.Email {
			writeError(w, http.StatusBadRequest, "Username or Email already exists")
			return
		}
	}
	s.addLocked(req.Username, req.Email, hash)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UsernameOrEmail string `json:"username_or_email"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UsernameOrEmail == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide username/email and password")
		return
	}

	s.mu.Lock()
	var found *account
	for _, a := range s.accounts {
		if a.username == req.UsernameOrEmail || a.email == req.UsernameOrEmail {
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username/email or password")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = found.id
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged in successfully",
		"user":    map[string]interface{}{"id": found.id, "username": found.username},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	a := s.currentUser(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{"id": a.id, "username": a.username},
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	data, _ := io.ReadAll(file)

	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        len(data),
	})
	body := s.prediction
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "City parameter is required")
		return
	}

	s.mu.Lock()
	info, ok := s.weather[strings.ToLower(city)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message  string `json:"message"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"reply":    "You said: " + req.Message,
		"language": lang,
	})
}

var samplePrices = []map[string]interface{}{
	{"crop": "wheat", "location": "delhi", "min_price": 2500, "modal_price": 2750, "max_price": 2900},
	{"crop": "paddy", "location": "punjab", "min_price": 1800, "modal_price": 2000, "max_price": 2150},
	{"crop": "soybean", "location": "madhya pradesh", "min_price": 3500, "modal_price": 3700, "max_price": 3860},
	{"crop": "wheat", "location": "punjab", "min_price": 2600, "modal_price": 2800, "max_price": 2950},
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Crop     string `json:"crop"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	crop := strings.ToLower(req.Crop)
	location := strings.ToLower(req.Location)

	results := make([]map[string]interface{}, 0)
	for _, p := range samplePrices {
		if strings.Contains(p["crop"].(string), crop) && strings.Contains(p["location"].(string), location) {
			results = append(results, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"market_prices": results})
}
