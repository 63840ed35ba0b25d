// Package apitest provides an in-memory REST server for the users, products,
// orders and companies collections.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// idFields maps each collection to the body field that identifies an entity.
var idFields = map[string]string{
	"users":     "username",
	"products":  "sku",
	"orders":    "orderNumber",
	"companies": "name",
}

// Request is a call the server received.
type Request struct {
	Method string
	Path   string
	Accept string
}

// Server stores posted entities in memory.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	entities     map[string]map[string]json.RawMessage
	requests     []Request
	deleteStatus int
}

// NewServer starts a server. Close it with Close.
func NewServer() *Server {
	s := &Server{
		entities: make(map[string]map[string]json.RawMessage, len(idFields)),
	}

	router := mux.NewRouter()
	router.Use(s.record)
	router.HandleFunc("/api/{collection}", s.create).Methods(http.MethodPost)
	router.HandleFunc("/api/{collection}/{id}", s.get).Methods(http.MethodGet)
	router.HandleFunc("/api/{collection}/{id}", s.remove).Methods(http.MethodDelete)
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	s.Server = httptest.NewServer(router)

	return s
}

// APIBaseURL is the value for Environment.ApiBaseUrl.
func (s *Server) APIBaseURL() string {
	return s.URL + "/api"
}

// FailDeletes makes every DELETE answer with status. Zero restores normal
// behaviour.
func (s *Server) FailDeletes(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteStatus = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Request, len(s.requests))
	copy(result, s.requests)

	return result
}

// Has reports whether collection/id is stored.
func (s *Server) Has(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entities[collection][id]

	return ok
}

// Len returns the number of stored entities in collection.
func (s *Server) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entities[collection])
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Accept: r.Header.Get("Accept"),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	field, ok := idFields[collection]
	if !ok {
		http.NotFound(w, r)

		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	var id string
	if err := json.Unmarshal(body[field], &id); err != nil || id == "" {
		http.Error(w, "missing "+field, http.StatusUnprocessableEntity)

		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.mu.Lock()
	if s.entities[collection] == nil {
		s.entities[collection] = make(map[string]json.RawMessage)
	}

	s.entities[collection][id] = raw
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(raw)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	raw, ok := s.entities[vars["collection"]][vars["id"]]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteStatus != 0 {
		w.WriteHeader(s.deleteStatus)

		return
	}

	if _, ok := s.entities[vars["collection"]][vars["id"]]; !ok {
		http.NotFound(w, r)

		return
	}

	delete(s.entities[vars["collection"]], vars["id"])
	w.WriteHeader(http.StatusNoContent)
}
