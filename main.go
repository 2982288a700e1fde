package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"interdeck/handlers/api/decks"
	"interdeck/handlers/api/preview"
	"interdeck/handlers/auth"
	"interdeck/handlers/websocket"
	authMiddleware "interdeck/middleware"
	"interdeck/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(store stores.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Token", "session", "Origin", "Host", "Connection", "Accept-Encoding", "Accept-Language", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/api/v2", func(r chi.Router) {
		// Authoring routes, protected by JWT auth.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthJWT)
			r.Route("/decks", func(r chi.Router) {
				r.Get("/", decks.HandleList(store))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", decks.HandleGet(store))
					r.Put("/", decks.HandleSave(store))
					r.Delete("/", decks.HandleDelete(store))
					r.Post("/publish", decks.HandlePublish(store))
					r.Route("/timeline/events", func(r chi.Router) {
						r.Post("/", decks.HandleAddEvent(store))
						r.Put("/{eventId}", decks.HandleEditEvent(store))
						r.Delete("/{eventId}", decks.HandleRemoveEvent(store))
					})
				})
			})
			r.Get("/rooms", func(w http.ResponseWriter, req *http.Request) {
				render.JSON(w, req, websocket.GetActiveRooms())
			})
		})

		// Anonymous routes for published decks and stateless previews.
		r.Get("/p/{id}", decks.HandleGetPublished(store))
		r.Route("/playback", func(r chi.Router) {
			r.Post("/frame", preview.HandleFrame())
			r.Post("/effect", preview.HandleEffect())
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", auth.HandleLogin)
		r.Get("/callback", auth.HandleCallback)
	})

	return r
}

func waitForShutdown(ioo *socketio.Server) {
	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	ioo.Close(nil)
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.InitAuth()
	store := stores.GetStore()

	r := setupRouter(store)

	ioo := websocket.SetupSocketIO()
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("error", err).Fatal("server failed")
		}
	}()

	waitForShutdown(ioo)
}
