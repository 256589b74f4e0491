package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/inkboard/inkboard/internal/auth"
	"github.com/inkboard/inkboard/internal/collab"
	"github.com/inkboard/inkboard/internal/config"
	"github.com/inkboard/inkboard/internal/db"
	"github.com/inkboard/inkboard/internal/discovery"
	"github.com/inkboard/inkboard/internal/export"
	mw "github.com/inkboard/inkboard/internal/middleware"
	"github.com/inkboard/inkboard/internal/render"
	"github.com/inkboard/inkboard/internal/slots"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store slots.Store
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, drawings are kept in memory")
		store = slots.NewMemoryStore()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		store = slots.NewPostgresStore(pool)
	}

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	slotHandler := slots.NewHandler(store, cfg.MaxUploadBytes)

	raster, err := render.NewRaster()
	if err != nil {
		slog.Error("load raster font", "error", err)
		os.Exit(1)
	}
	exportHandler := export.NewHandler(raster, cfg.MaxUploadBytes)

	docs := slotDocs{store: store, now: time.Now}
	hub := collab.NewHub(docs.load, docs.save, cfg.SaveInterval)
	go hub.Run()

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Preflight for every route; CORS answers it before auth runs.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST")
	r.HandleFunc("/auth/board", authHandler.ProtectBoard).Methods("POST")

	// Export is public so unsaved local boards can be downloaded.
	r.HandleFunc("/export/{format}", exportHandler.Export).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/drawings", slotHandler.List).Methods("GET")
	api.HandleFunc("/drawings/{name}", slotHandler.Get).Methods("GET")
	api.HandleFunc("/drawings/{name}", slotHandler.Save).Methods("PUT")
	api.HandleFunc("/drawings/{name}", slotHandler.Delete).Methods("DELETE")

	r.HandleFunc("/ws/session/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.Origins())
	})

	peersHandler := discovery.NewHandler(2 * time.Second)
	r.HandleFunc("/peers", peersHandler.Peers).Methods("GET")

	if cfg.MDNSEnabled {
		server, err := discovery.Advertise(cfg.Port, "version=1")
		if err != nil {
			slog.Error("advertise on lan", "error", err)
		} else {
			slog.Info("advertising on lan", "service", discovery.ServiceType)
			defer server.Shutdown()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to flush dirty rooms.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, origins []string) {
	sessionID := mux.Vars(r)["sessionId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := authSvc.CheckBoard(sessionID, r.URL.Query().Get("passphrase")); err != nil {
		http.Error(w, "wrong passphrase", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, user.ID, user.DisplayName, sessionID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
