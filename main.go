package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/Rex818/Photo666-sub001/config"
	"github.com/Rex818/Photo666-sub001/database"
	"github.com/Rex818/Photo666-sub001/handlers"
	"github.com/Rex818/Photo666-sub001/importer"
	"github.com/Rex818/Photo666-sub001/logger"
	"github.com/Rex818/Photo666-sub001/media"
	"github.com/Rex818/Photo666-sub001/repository"
	"github.com/Rex818/Photo666-sub001/scanner"
	"github.com/Rex818/Photo666-sub001/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Info: No .env file found or error loading: %v\n", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	storagePaths := []string{cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.WithField("path", p).Debug("ensuring storage directory exists")
		if err := os.MkdirAll(p, 0755); err != nil {
			log.WithField("path", p).WithError(err).Fatal("failed to create storage directory")
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database schema")
	}

	photoRepo := repository.NewPhotoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)

	imageScanner := scanner.New(cfg.SupportedExtensions)
	thumbnailer := media.NewThumbnailer(cfg.ThumbnailsPath, cfg.ThumbnailMaxSize)

	imp := importer.New(importer.Options{
		Photos:            photoRepo,
		Albums:            albumRepo,
		Scanner:           imageScanner,
		Thumbs:            thumbnailer,
		SearchDirectories: cfg.SearchDirectories,
		Workers:           cfg.ImportWorkers,
		BatchSize:         cfg.ImportBatchSize,
		Logger:            log,
	})

	photoProcessor := workers.NewPhotoProcessor(photoRepo, thumbnailer, aiExtractor{}, log, cfg.TaskQueueSize, cfg.NumTaskWorkers)
	defer photoProcessor.Stop()

	log.WithField("database", cfg.DatabasePath).Info("catalog ready")
	log.WithField("thumbnails", cfg.ThumbnailsPath).Info("thumbnail storage ready")

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))
	r.Use(corsHandler.Handler)

	importHandler := &handlers.ImportHandler{Importer: imp, Scanner: imageScanner, Log: log}
	photoHandler := &handlers.PhotoHandler{Photos: photoRepo, Importer: imp, Processor: photoProcessor, Log: log}
	albumHandler := &handlers.AlbumHandler{Albums: albumRepo, Importer: imp, Log: log}

	r.Route("/api", func(r chi.Router) {
		r.Route("/import", func(r chi.Router) {
			r.Post("/file", importHandler.ImportFile)
			r.Post("/directory", importHandler.ImportDirectory)
			r.Post("/directories", importHandler.ImportDirectories)
		})

		r.Route("/photos", func(r chi.Router) {
			r.Get("/", photoHandler.ListPhotos)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", photoHandler.GetPhoto)
				r.Patch("/", photoHandler.UpdatePhoto)
				r.Delete("/", photoHandler.DeletePhoto)
				r.Get("/tags", photoHandler.GetPhotoTags)
				r.Put("/tags", photoHandler.SetPhotoTags)
				r.Post("/refresh", photoHandler.RefreshPhoto)
			})
		})

		r.Route("/albums", func(r chi.Router) {
			r.Post("/", albumHandler.CreateAlbum)
			r.Get("/", albumHandler.ListAlbums)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", albumHandler.GetAlbum)
				r.Delete("/", albumHandler.DeleteAlbum)
				r.Get("/photos", albumHandler.GetAlbumPhotos)
				r.Post("/photos", albumHandler.AddAlbumPhotos)
				r.Post("/refresh-ai", albumHandler.RefreshAlbumAIMetadata)
			})
		})

		r.Post("/maintenance/missing-files", importHandler.FixMissingFiles)
		r.Get("/scan/directories", importHandler.ScanDirectories)

		thumbnailSubDir := filepath.Base(cfg.ThumbnailsPath)
		r.Get(fmt.Sprintf("/%s/*", thumbnailSubDir), handlers.AssetServer(cfg.MediaStoragePath, thumbnailSubDir))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	log.WithField("addr", serverAddr).Info("server starting")
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // batch imports can run long
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// aiExtractor adapts the package-level extractor to the worker pool.
type aiExtractor struct{}

func (aiExtractor) Extract(path string) (*media.AIMetadata, error) {
	return media.ExtractAIMetadata(path)
}
