package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"contactdb/pkg/common"
	"contactdb/pkg/core"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	store *core.Store

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

func NewServer(store *core.Store) *Server {
	return &Server{store: store}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/contacts", s.handleContacts)
	mux.HandleFunc("/api/find", s.handleFind)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/save", s.handleSave)
	mux.HandleFunc("/api/backup", s.handleBackup)
	mux.HandleFunc("/api/restore", s.handleRestore)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return withRequestID(mux)
}

// Start blocks serving HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = srv
	s.mu.Unlock()

	log.Printf("[API] Server listening on %s...", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[API] %s %s %s (%v)", id, r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		contacts := s.store.List()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(contacts),
			"contacts": nonNil(contacts),
		})

	case http.MethodPost:
		var req common.Contact
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid body", http.StatusBadRequest)
			return
		}
		c, err := s.store.Add(req.Name, req.Phone, req.Remark)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case http.MethodDelete:
		key := r.URL.Query().Get("key")
		n, err := s.store.Delete(key)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": n})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		start    = time.Now()
		contacts []common.Contact
	)
	switch {
	case q.Has("name"):
		contacts = s.store.FindByNamePrefix(q.Get("name"))
	case q.Has("phone"):
		contacts = s.store.FindByPhonePrefix(q.Get("phone"))
	default:
		http.Error(w, "Missing name or phone parameter", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(contacts),
		"contacts":   nonNil(contacts),
		"latency_ns": time.Since(start).Nanoseconds(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n, err := s.store.Save()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": n})
}

type backupPayload struct {
	RecordCount int              `json:"record_count"`
	Records     []common.Contact `json:"records"`
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	contacts := s.store.List()
	writeJSON(w, http.StatusOK, backupPayload{RecordCount: len(contacts), Records: nonNil(contacts)})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req backupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	report, err := s.store.Restore(req.Records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats()
	wl := s.store.Workload()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# TYPE contactdb_contacts gauge\ncontactdb_contacts %d\n", st.TotalContacts)
	fmt.Fprintf(w, "# TYPE contactdb_unique_names gauge\ncontactdb_unique_names %d\n", st.UniqueNames)
	fmt.Fprintf(w, "# TYPE contactdb_adds_total counter\ncontactdb_adds_total %d\n", wl.Adds)
	fmt.Fprintf(w, "# TYPE contactdb_deletes_total counter\ncontactdb_deletes_total %d\n", wl.Deletes)
	fmt.Fprintf(w, "# TYPE contactdb_finds_total counter\ncontactdb_finds_total %d\n", wl.Finds)
	fmt.Fprintf(w, "# TYPE contactdb_find_hits_total counter\ncontactdb_find_hits_total %d\n", wl.Hits)
	fmt.Fprintf(w, "# TYPE contactdb_journal_size_bytes gauge\ncontactdb_journal_size_bytes %d\n", s.store.JournalSize())
	fmt.Fprintf(w, "# TYPE contactdb_rw_ratio gauge\ncontactdb_rw_ratio %g\n", s.store.ReadWriteRatio())
	fmt.Fprintf(w, "# TYPE contactdb_find_hit_ratio gauge\ncontactdb_find_hit_ratio %g\n", s.store.HitRatio())
	fmt.Fprintf(w, "# TYPE contactdb_tree_nodes gauge\ncontactdb_tree_nodes{tree=\"name\"} %d\ncontactdb_tree_nodes{tree=\"phone\"} %d\n", st.NameTreeNodes, st.PhoneTreeNodes)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicatePhone):
		status = http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func nonNil(contacts []common.Contact) []common.Contact {
	if contacts == nil {
		return []common.Contact{}
	}
	return contacts
}
