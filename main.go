package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"spacenote-api/fields"
	"spacenote-api/handlers"
	"spacenote-api/initializers"
	"spacenote-api/middleware"
	"spacenote-api/pkg/notify"
	"spacenote-api/repository"
	"spacenote-api/websocket"
)

func main() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be set and at least 32 characters")
	}

	ctx := context.Background()
	client, db, err := initializers.InitMongo(ctx)
	if err != nil {
		log.Fatal("Could not connect to MongoDB:", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("mongodb disconnect failed", "err", err)
		}
	}()

	if err := initializers.InitMinio(); err != nil {
		log.Fatal("Failed to initialize Minio:", err)
	}

	usersRepo := repository.NewUsersRepository(db)
	spacesRepo := repository.NewSpacesRepository(db)
	notesRepo := repository.NewNotesRepository(db)
	commentsRepo := repository.NewCommentsRepository(db)
	attachmentsRepo := repository.NewAttachmentsRepository(db)
	countersRepo := repository.NewCountersRepository(db)

	for _, indexed := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{usersRepo, spacesRepo, notesRepo, commentsRepo, attachmentsRepo, countersRepo} {
		if err := indexed.EnsureIndexes(ctx); err != nil {
			log.Fatal("Failed to create indexes:", err)
		}
	}

	// The validator registry is built once and shared by all handlers.
	registry := fields.NewRegistry()

	r := gin.New()
	// Structured request ID and JSON access logs
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	// Panic recovery
	r.Use(gin.Recovery())

	// Configure trusted proxies for correct client IP handling in production
	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		parts := strings.Split(trustedProxies, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		// Default to loopback only; override via TRUSTED_PROXIES in production
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	r.Use(middleware.CORSMiddleware())
	// Apply rate limiting globally after CORS but before routes
	r.Use(middleware.RateLimitMiddleware())

	// WebSocket hub and notifier for real-time events
	hub := websocket.NewHub()
	notifier := &notify.WSNotifier{Hub: hub}

	authHandler := handlers.NewAuthHandler(usersRepo, jwtSecret)
	spacesHandler := handlers.NewSpacesHandler(spacesRepo, usersRepo, notesRepo, commentsRepo, countersRepo).WithNotifier(notifier)
	fieldsHandler := handlers.NewFieldsHandler(spacesRepo, usersRepo, notesRepo, registry)
	filtersHandler := handlers.NewFiltersHandler(spacesRepo)
	notesHandler := handlers.NewNotesHandler(notesRepo, spacesRepo, usersRepo, commentsRepo, countersRepo, registry).WithNotifier(notifier)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo, notesRepo, spacesRepo, usersRepo, countersRepo, registry).WithNotifier(notifier)
	attachmentsHandler := handlers.NewAttachmentsHandler(attachmentsRepo, spacesRepo, countersRepo)

	if os.Getenv("GIN_MODE") == "release" || strings.ToLower(os.Getenv("APP_ENV")) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Public endpoints
	r.GET("/health", handlers.HealthCheck)

	// Public endpoints with stricter auth rate limit
	authPublic := r.Group("/", middleware.RateLimitAuthMiddleware())
	authPublic.POST("/register", authHandler.Register)
	authPublic.POST("/login", authHandler.Login)

	auth := r.Group("/", handlers.AuthMiddleware(jwtSecret))
	{
		auth.GET("/ws", websocket.ServeWS(hub))
		auth.GET("/me", authHandler.Me)

		auth.GET("/field-types", fieldsHandler.GetFieldTypes)

		auth.POST("/spaces", spacesHandler.CreateSpace)
		auth.GET("/spaces", spacesHandler.GetSpaces)
		auth.GET("/spaces/:slug", spacesHandler.GetSpace)
		auth.DELETE("/spaces/:slug", spacesHandler.DeleteSpace)
		auth.GET("/spaces/:slug/members", spacesHandler.GetMembers)
		auth.POST("/spaces/:slug/members", spacesHandler.AddMember)
		auth.DELETE("/spaces/:slug/members/:userId", spacesHandler.RemoveMember)
		auth.PUT("/spaces/:slug/list-fields", spacesHandler.SetListFields)
		auth.PUT("/spaces/:slug/hidden-create-fields", spacesHandler.SetHiddenCreateFields)
		auth.PUT("/spaces/:slug/comment-editable-fields", spacesHandler.SetCommentEditableFields)
		auth.PUT("/spaces/:slug/templates", spacesHandler.SetTemplates)

		auth.POST("/spaces/:slug/fields", fieldsHandler.AddField)
		auth.DELETE("/spaces/:slug/fields/:fieldId", fieldsHandler.RemoveField)

		auth.GET("/spaces/:slug/filters", filtersHandler.GetFilters)
		auth.POST("/spaces/:slug/filters", filtersHandler.AddFilter)
		auth.DELETE("/spaces/:slug/filters/:filterId", filtersHandler.RemoveFilter)

		auth.POST("/spaces/:slug/notes", notesHandler.CreateNote)
		auth.GET("/spaces/:slug/notes", notesHandler.ListNotes)
		auth.GET("/spaces/:slug/notes/:number", notesHandler.GetNote)
		auth.PATCH("/spaces/:slug/notes/:number", notesHandler.UpdateNote)

		auth.POST("/spaces/:slug/notes/:number/comments", commentsHandler.CreateComment)
		auth.GET("/spaces/:slug/notes/:number/comments", commentsHandler.ListComments)
		auth.PATCH("/spaces/:slug/notes/:number/comments/:commentNumber", commentsHandler.UpdateComment)

		auth.POST("/spaces/:slug/attachments", attachmentsHandler.UploadFile)
		auth.GET("/spaces/:slug/attachments", attachmentsHandler.ListAttachments)
		auth.GET("/spaces/:slug/attachments/:attachmentId", attachmentsHandler.GetAttachment)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
