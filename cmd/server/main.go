package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/purushottamsingh1141/code-box/internal/api"
	"github.com/purushottamsingh1141/code-box/internal/db"
	"github.com/purushottamsingh1141/code-box/internal/janitor"
	"github.com/purushottamsingh1141/code-box/internal/judge"
	"github.com/purushottamsingh1141/code-box/internal/ws"
)

func main() {
	dbPath := os.Getenv("CODEBOX_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/codebox.db"
	}

	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	hub := ws.NewHub()
	go hub.Run()

	judgeClient := judge.NewClient(os.Getenv("JUDGE0_URL"), os.Getenv("RAPID_API_KEY"))

	cleaner := janitor.New(database, janitor.DefaultConfig())
	cleaner.Start()

	apiHandler := api.New(hub, judgeClient, database)

	r := mux.NewRouter()
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWs(hub, w, req)
	})
	r.HandleFunc("/", apiHandler.RootHandler).Methods("GET")
	r.HandleFunc("/health", apiHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/stats", apiHandler.StatsHandler).Methods("GET")
	r.HandleFunc("/compile", apiHandler.CompileHandler).Methods("POST", "OPTIONS")

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	handler := corsMiddleware(r, allowedOrigin)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		cleaner.Stop()
		database.Close()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("🚀 CodeBox backend running on :%s", port)
	log.Printf("📁 Database: %s", dbPath)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws")
	log.Println("  - Liveness:  GET /")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Compile:   POST /compile")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
