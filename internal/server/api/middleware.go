package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	args := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	}
	if err != nil {
		args = append(args, "error", err)
	}
	s.logger.Debug(c.UserContext(), "request", args...)

	return err
}

// errorHandler renders errors that escaped a handler as JSON.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.logger.Error(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(errorResponse{Error: msg})
}
