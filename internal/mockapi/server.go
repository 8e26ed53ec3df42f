// Package mockapi is an in-memory stand-in for the catalog API. It serves the
// five endpoints the console consumes and simulates the asynchronous
// description pipeline: a queued generation advances one state per status
// query until it completes.
package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/google/uuid"
)

// Options tunes the simulated pipeline
type Options struct {
	// PollsUntilDone is the number of status queries answered with a
	// non-terminal status before a job completes. Defaults to 3.
	PollsUntilDone int
	Logger         *logging.Logger
	Now            func() time.Time
}

type job struct {
	requestID string
	title     string
	audience  string
	specs     map[string]string
	polls     int
}

// Server holds the fake catalog state
type Server struct {
	mu       sync.Mutex
	products []interfaces.Product
	jobs     map[string]*job
	nextID   int
	opts     Options
	logger   *logging.Logger
}

// New creates an empty mock catalog
func New(opts Options) *Server {
	if opts.PollsUntilDone <= 0 {
		opts.PollsUntilDone = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Server{
		jobs:   make(map[string]*job),
		nextID: 1000,
		opts:   opts,
		logger: logger.WithComponent("mockapi"),
	}
}

// Handler returns the HTTP routes of the mock catalog
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", s.productsHandler)
	mux.HandleFunc("POST /save-product", s.saveProductHandler)
	mux.HandleFunc("PUT /update-product", s.updateProductHandler)
	mux.HandleFunc("POST /generate", s.generateHandler)
	mux.HandleFunc("GET /status/{requestId}", s.statusHandler)
	return withCORS(mux)
}

// Seed inserts products directly, bypassing the HTTP surface
func (s *Server) Seed(products ...interfaces.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if p.ItemID == "" {
			p.ItemID = s.allocateID()
		}
		s.products = append(s.products, p)
	}
}

// Product returns a copy of a stored product
func (s *Server) Product(itemID string) (interfaces.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ItemID == itemID {
			return p, true
		}
	}
	return interfaces.Product{}, false
}

func (s *Server) allocateID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (s *Server) productsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]interfaces.Product, len(s.products))
	copy(out, s.products)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveProductHandler(w http.ResponseWriter, r *http.Request) {
	var req interfaces.SaveProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("JSON decode error: %v", err))
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		writeError(w, http.StatusBadRequest, "product_name is required")
		return
	}

	s.mu.Lock()
	product := interfaces.Product{
		ItemID:         s.allocateID(),
		ProductName:    req.ProductName,
		Price:          req.Price,
		KeyFeatures:    req.KeyFeatures,
		TechnicalSpecs: append([]interfaces.TechnicalSpec(nil), req.TechnicalSpecs...),
		Description:    req.Description,
		TargetAudience: req.TargetAudience,
		CreatedAt:      req.CreatedAt,
	}
	s.products = append(s.products, product)
	s.mu.Unlock()

	s.logger.Info("Product saved", "item_id", product.ItemID, "name", product.ProductName)
	writeJSON(w, http.StatusOK, interfaces.SaveProductResponse{ItemID: product.ItemID})
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req interfaces.UpdateProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("JSON decode error: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ItemID == req.ItemID {
			s.products[i].Description = req.Description
			s.products[i].UpdatedAt = s.opts.Now().UTC().Format(time.RFC3339)
			writeJSON(w, http.StatusOK, s.products[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("product %s not found", req.ItemID))
}

type generateBody struct {
	RequestID               string            `json:"requestId"`
	Title                   string            `json:"title"`
	Price                   string            `json:"price"`
	TechnicalSpecifications map[string]string `json:"technicalSpecifications"`
	TargetAudience          string            `json:"targetAudience"`
	KeyFeatures             string            `json:"keyFeatures,omitempty"`
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateBody
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("JSON decode error: %v", err))
		return
	}
	if req.RequestID == "" {
		writeError(w, http.StatusBadRequest, "requestId is required")
		return
	}

	s.mu.Lock()
	s.jobs[req.RequestID] = &job{
		requestID: req.RequestID,
		title:     req.Title,
		audience:  req.TargetAudience,
		specs:     req.TechnicalSpecifications,
	}
	s.mu.Unlock()

	s.logger.Info("Generation queued", "request_id", req.RequestID)
	writeJSON(w, http.StatusAccepted, map[string]string{"MessageId": uuid.NewString()})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("requestId")

	s.mu.Lock()
	j, ok := s.jobs[requestID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "unknown request")
		return
	}
	j.polls++
	polls := j.polls
	s.mu.Unlock()

	switch {
	case polls == 1 && polls < s.opts.PollsUntilDone:
		writeJSON(w, http.StatusOK, interfaces.StatusResponse{Status: interfaces.StatusQueued})
	case polls < s.opts.PollsUntilDone:
		writeJSON(w, http.StatusOK, interfaces.StatusResponse{Status: interfaces.StatusProcessing})
	case strings.Contains(strings.ToLower(j.title), "fail"):
		writeJSON(w, http.StatusOK, interfaces.StatusResponse{Status: interfaces.StatusError, Error: "model invocation failed"})
	case strings.Contains(strings.ToLower(j.title), "sentinel"):
		writeJSON(w, http.StatusOK, interfaces.StatusResponse{Status: interfaces.StatusCompleted, GeneratedDescription: "error"})
	default:
		writeJSON(w, http.StatusOK, interfaces.StatusResponse{
			Status:               interfaces.StatusCompleted,
			GeneratedDescription: describe(j),
		})
	}
}

func describe(j *job) string {
	names := make([]string, 0, len(j.specs))
	for name := range j.specs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", j.specs[name], strings.ToLower(name)))
	}

	audience := j.audience
	if audience == "" {
		audience = "everyone"
	}
	return fmt.Sprintf("Meet the %s, built for %s. Highlights: %s.", j.title, audience, strings.Join(parts, ", "))
}
