package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Order    *services.OrderService
	Sessions Sessions
}

// Checkout validates the checkout form, finalizes the cart and answers with
// the order snapshot.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)

	var details domain.CheckoutDetails
	if err := c.BodyParser(&details); err != nil {
		return badRequest(c, "body", "malformed request body")
	}
	if err := validate.Struct(details); err != nil {
		var fe validate.FieldErrors
		if !errors.As(err, &fe) {
			return err
		}
		fields := make([]string, 0, len(fe))
		for f := range fe {
			fields = append(fields, f)
		}
		applog.Security(c, "validation.fail", map[string]any{"fields": fields})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid checkout details", "fields": fe})
	}

	order, err := h.Order.Checkout(c.UserContext(), sid, details)
	if errors.Is(err, checkout.ErrEmptyCart) {
		applog.Warn(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Your cart is empty."})
	}
	if err != nil {
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not place order. Please try again."})
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": order.ID,
		"shipping": string(order.ShippingMethod),
		"total":    order.Total.StringFixed(2),
		"lines":    len(order.Cart),
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) Last(c *fiber.Ctx) error {
	order, err := h.Order.Last(c.UserContext(), h.Sessions.ensureSID(c))
	if errors.Is(err, checkout.ErrNoLastOrder) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No order found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	list, err := h.Order.History(h.Sessions.ensureSID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": list})
}

// Get returns one order of the session's history.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.OrderID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	order, err := h.Order.Get(h.Sessions.ensureSID(c), id)
	if errors.Is(err, services.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(order)
}
