package track

import (
	"io"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router) {
	r.Post("/parse", func(c *fiber.Ctx) error {
		header, err := c.FormFile("track")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "a track file is required")
		}

		format, err := DetectFormat(header.Filename)
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

		points, err := Parse(data, format)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(Summary{
			FileName:   header.Filename,
			Format:     format,
			PointCount: len(points),
			DistanceKm: DistanceKm(points),
			Points:     points,
		})
	})
}
