package animation

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		header, err := c.FormFile("track")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "a track file is required")
		}

		format, err := track.DetectFormat(header.Filename)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		file, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read the uploaded file")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read the uploaded file")
		}

		points, err := track.Parse(data, format)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		job := svc.Start(points, header.Filename)
		return c.Status(fiber.StatusAccepted).JSON(job)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		job, ok := svc.Job(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "animation not found")
		}
		return c.JSON(job)
	})

	r.Get("/:id/video", func(c *fiber.Ctx) error {
		video, name, ok := svc.Video(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "video not ready")
		}
		c.Set(fiber.HeaderContentType, "video/mp4")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(video)
	})
}
