// Package api is the HTTP surface of the marketplace: authentication,
// the CRUD resources, the messaging endpoints and the websocket
// upgrade. Handlers translate typed application errors into HTTP
// statuses and delegate everything else to the repository and the
// messaging store.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"github.com/campusdeals/api/internal/config"
	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/messaging"
	"github.com/campusdeals/api/internal/realtime"
	"github.com/campusdeals/api/internal/stats"
)

type App struct {
	log            *log.Logger
	db             database.Repository
	store          *messaging.Store
	rt             *realtime.Server
	stats          stats.StatsProvider
	srv            *http.Server
	signingKey     []byte
	allowedOrigins []string
	// generateShortId mints public listing ids. Overridable in tests.
	generateShortId func() (string, error)
}

func NewApp(mux *http.ServeMux, logger *log.Logger, rt *realtime.Server, db database.Repository,
	store *messaging.Store, sp stats.StatsProvider, cfg *config.Config) *App {
	a := &App{
		log:            logger,
		db:             db,
		store:          store,
		rt:             rt,
		stats:          sp,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		generateShortId: func() (string, error) {
			return shortid.Generate()
		},
	}

	mux.HandleFunc("GET /healthz", a.healthCheck)

	mux.HandleFunc("POST /api/auth/register", a.register)
	mux.HandleFunc("POST /api/auth/login", a.login)
	mux.Handle("GET /api/auth/session", a.authMiddleware(a.session))
	mux.Handle("GET /api/auth/logout", a.authMiddleware(a.logout))

	mux.Handle("GET /api/users", a.authMiddleware(a.listUsers))
	mux.Handle("GET /api/users/{id}", a.authMiddleware(a.getUser))
	mux.Handle("PUT /api/account", a.authMiddleware(a.updateAccount))
	mux.Handle("DELETE /api/account", a.authMiddleware(a.deleteAccount))

	mux.HandleFunc("GET /api/campuses", a.listCampuses)
	mux.HandleFunc("GET /api/campuses/{id}", a.getCampus)
	mux.Handle("POST /api/campuses", a.authMiddleware(a.createCampus))
	mux.Handle("PUT /api/campuses/{id}", a.authMiddleware(a.updateCampus))
	mux.Handle("DELETE /api/campuses/{id}", a.authMiddleware(a.deleteCampus))

	mux.HandleFunc("GET /api/categories", a.listCategories)
	mux.HandleFunc("GET /api/categories/{id}", a.getCategory)
	mux.Handle("POST /api/categories", a.authMiddleware(a.createCategory))
	mux.Handle("PUT /api/categories/{id}", a.authMiddleware(a.updateCategory))
	mux.Handle("DELETE /api/categories/{id}", a.authMiddleware(a.deleteCategory))

	mux.HandleFunc("GET /api/listings", a.listListings)
	mux.HandleFunc("GET /api/listings/{id}", a.getListing)
	mux.Handle("POST /api/listings", a.authMiddleware(a.createListing))
	mux.Handle("PUT /api/listings/{id}", a.authMiddleware(a.updateListing))
	mux.Handle("DELETE /api/listings/{id}", a.authMiddleware(a.deleteListing))

	mux.Handle("POST /api/listings/{id}/favorite", a.authMiddleware(a.createFavorite))
	mux.Handle("DELETE /api/listings/{id}/favorite", a.authMiddleware(a.deleteFavorite))
	mux.Handle("GET /api/favorites", a.authMiddleware(a.listFavorites))

	mux.Handle("POST /api/users/{id}/reviews", a.authMiddleware(a.createReview))
	mux.Handle("GET /api/users/{id}/reviews", a.authMiddleware(a.listReviews))

	mux.Handle("POST /api/messages", a.authMiddleware(a.sendMessage))
	mux.Handle("DELETE /api/messages/{id}", a.authMiddleware(a.deleteMessage))
	mux.Handle("GET /api/conversations", a.authMiddleware(a.listConversations))
	mux.Handle("GET /api/conversations/{id}", a.authMiddleware(a.getConversation))
	mux.Handle("GET /api/conversations/{id}/messages", a.authMiddleware(a.listConversationMessages))
	mux.Handle("PATCH /api/conversations/{id}/read", a.authMiddleware(a.markConversationRead))

	mux.Handle("GET /ws", a.authMiddleware(a.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = a.requestIdMiddleware(h)
	h = a.errorHandler(h)

	a.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return a
}

func (a *App) Start() error {
	a.log.Printf("starting server on %s\n", a.srv.Addr)
	return a.srv.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.log.Println("shutting down HTTP server...")
	if err := a.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (a *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (a *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Printf("json encode: %v", err)
	}
}

// writeError logs the internal cause, if any, and sends the client
// shape.
func (a *App) writeError(w http.ResponseWriter, errResp *ApiError) {
	if errResp.Err != nil {
		a.log.Printf("request failed: %v", errResp)
	}

	a.writeJson(w, errResp.StatusCode, errResp)
}

// pathId parses the {id} segment of the route.
func pathId(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}
