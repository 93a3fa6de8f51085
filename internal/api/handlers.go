package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/purushottamsingh1141/code-box/internal/db"
	"github.com/purushottamsingh1141/code-box/internal/judge"
	"github.com/purushottamsingh1141/code-box/internal/ws"
)

type API struct {
	hub      *ws.Hub
	judge    *judge.Client
	database *db.Database
}

func New(hub *ws.Hub, judgeClient *judge.Client, database *db.Database) *API {
	return &API{
		hub:      hub,
		judge:    judgeClient,
		database: database,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// RootHandler is the liveness endpoint
func (a *API) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "CodeBox backend is running 🎉")
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.database != nil {
		dbStats, err := a.database.GetStats()
		if err == nil {
			stats["cached_results"] = dbStats["cached_results"]
			stats["cache_hits"] = dbStats["cache_hits"]
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// Compile proxy

type CompileRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CompileResponse struct {
	Output string `json:"output"`
}

// CompileHandler forwards a submission to Judge0 and returns the captured
// output. Identical submissions are answered from the cache. Every failure,
// unsupported language included, collapses into the same generic error so
// nothing about the upstream service leaks to the client.
func (a *API) CompileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	language := strings.ToLower(req.Language)
	hash := db.HashSubmission(language, req.Code)

	if a.database != nil {
		cached, err := a.database.GetResult(hash)
		if err != nil {
			log.Printf("Cache lookup failed: %v", err)
		}
		if cached != nil {
			if err := a.database.MarkHit(hash); err != nil {
				log.Printf("Failed to record cache hit: %v", err)
			}
			jsonResponse(w, http.StatusOK, CompileResponse{Output: cached.Output})
			return
		}
	}

	output, err := a.judge.Compile(r.Context(), req.Code, language)
	if err != nil {
		log.Printf("Compilation error: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Compilation failed.")
		return
	}

	if a.database != nil {
		if err := a.database.SaveResult(hash, language, output); err != nil {
			log.Printf("Failed to cache compile result: %v", err)
		}
	}

	jsonResponse(w, http.StatusOK, CompileResponse{Output: output})
}
