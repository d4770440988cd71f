package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/checkout"
	"storefront/internal/services"
)

// PageHandler serves the server-rendered pages.
type PageHandler struct {
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Order    *services.OrderService
	Sessions Sessions
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	f, field, ok := parseFilter(c)
	if !ok {
		return badRequest(c, field, "invalid "+field)
	}
	sid := h.Sessions.ensureSID(c)
	return render(c, "products", fiber.Map{
		"Page":      h.Catalog.ListProducts(f),
		"CartCount": h.Cart.View(c.UserContext(), sid).Count,
	})
}

func (h *PageHandler) CartPage(c *fiber.Ctx) error {
	return render(c, "cart", fiber.Map{"Cart": h.Cart.View(c.UserContext(), h.Sessions.ensureSID(c))})
}

func (h *PageHandler) LastOrder(c *fiber.Ctx) error {
	order, err := h.Order.Last(c.UserContext(), h.Sessions.ensureSID(c))
	if errors.Is(err, checkout.ErrNoLastOrder) {
		return notFoundPage(c, "No order found")
	}
	if err != nil {
		return err
	}
	return render(c, "order", fiber.Map{"Order": order})
}
