package server

import (
	"github.com/gofiber/fiber/v2"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func success(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(successResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func failure(c *fiber.Ctx, code int, message string, details any) error {
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(errorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}
