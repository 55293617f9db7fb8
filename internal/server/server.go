package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/animation"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/config"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/snapshot"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/stream"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/videogen"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	renderer := snapshot.NewRenderer(snapshot.Options{
		Width:    s.Cfg.SnapshotWidth,
		Height:   s.Cfg.SnapshotHeight,
		TileURL:  s.Cfg.TileURL,
		CacheDir: s.Cfg.TileCacheDir,
	})
	generator := videogen.New(s.Cfg.GeminiAPIKey, s.Cfg.VideoModel, s.Cfg.VideoAPIBaseURL, s.Cfg.PollInterval())
	animations := animation.NewService(animation.NewStore(), renderer, generator, s.Stream)

	track.RegisterRoutes(s.App.Group("/tracks"))
	animation.RegisterRoutes(s.App.Group("/animations"), animations)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
