package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/angelmondragon/cartsync/internal/gateway"
	"github.com/google/uuid"
)

const defaultUserID = "demo"

// service is an in-memory stand-in for the remote cart service. It mirrors
// the real contract's quirks on purpose: responses can be bare or wrapped
// under "data" (envelope=bare|data), and mutation bodies can be suppressed
// entirely (echo=0) to force clients through their resync paths.
type service struct {
	mu       sync.Mutex
	catalog  map[string]gateway.Product
	carts    map[string][]gateway.Entry
	seenKeys map[string]bool
}

func newService(catalog map[string]gateway.Product) *service {
	return &service{
		catalog:  catalog,
		carts:    make(map[string][]gateway.Entry),
		seenKeys: make(map[string]bool),
	}
}

func (s *service) listCart(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = defaultUserID
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 25
	}

	s.mu.Lock()
	entries := append([]gateway.Entry(nil), s.carts[userID]...)
	s.mu.Unlock()

	start := (page - 1) * limit
	if start > len(entries) {
		start = len(entries)
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}

	writeCollection(w, r, entries[start:end])
}

func (s *service) createEntry(w http.ResponseWriter, r *http.Request) {
	var input gateway.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if input.Quantity < 1 {
		http.Error(w, "quantity must be at least 1", http.StatusBadRequest)
		return
	}
	userID := userFrom(r)

	s.mu.Lock()
	product, ok := s.catalog[input.ProductID]
	if !ok {
		s.mu.Unlock()
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	replay := key != "" && s.seenKeys[key]
	if !replay {
		if key != "" {
			s.seenKeys[key] = true
		}
		entries := s.carts[userID]
		merged := false
		for i := range entries {
			if entries[i].ProductID == input.ProductID {
				entries[i].Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			entries = append(entries, gateway.Entry{
				ID:        uuid.NewString(),
				ProductID: input.ProductID,
				Quantity:  input.Quantity,
				Product:   product,
			})
		}
		s.carts[userID] = entries
	}
	entries := append([]gateway.Entry(nil), s.carts[userID]...)
	s.mu.Unlock()

	if suppressEcho(r) {
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeCollection(w, r, entries)
}

func (s *service) updateEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if input.Quantity < 1 {
		http.Error(w, "quantity must be at least 1", http.StatusBadRequest)
		return
	}
	userID := userFrom(r)

	s.mu.Lock()
	var updated *gateway.Entry
	entries := s.carts[userID]
	for i := range entries {
		if entries[i].ID == entryID {
			entries[i].Quantity = input.Quantity
			copied := entries[i]
			updated = &copied
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}
	if suppressEcho(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeEntry(w, r, *updated)
}

func (s *service) deleteEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	userID := userFrom(r)

	s.mu.Lock()
	entries := s.carts[userID]
	kept := entries[:0]
	found := false
	for _, entry := range entries {
		if entry.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	s.carts[userID] = kept
	s.mu.Unlock()

	if !found {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userFrom(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get("X-User-Id")); user != "" {
		return user
	}
	if user := r.URL.Query().Get("userId"); user != "" {
		return user
	}
	return defaultUserID
}

func suppressEcho(r *http.Request) bool {
	return r.URL.Query().Get("echo") == "0"
}

func writeCollection(w http.ResponseWriter, r *http.Request, entries []gateway.Entry) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("envelope") == "bare" {
		_ = json.NewEncoder(w).Encode(entries)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": entries})
}

func writeEntry(w http.ResponseWriter, r *http.Request, entry gateway.Entry) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("envelope") == "bare" {
		_ = json.NewEncoder(w).Encode(entry)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": entry})
}
