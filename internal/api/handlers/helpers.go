package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func GetBrandID(c *fiber.Ctx) int64 {
	brandID, _ := strconv.Atoi(c.Locals("brand_id").(string))
	return int64(brandID)
}
