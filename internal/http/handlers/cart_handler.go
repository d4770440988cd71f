package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Sessions Sessions
}

// cartBody accepts JSON or form bodies; numbers may arrive as strings.
type cartBody struct {
	ProductID json.Number `json:"productId" form:"productId"`
	Size      string      `json:"size" form:"size"`
	Qty       json.Number `json:"qty" form:"qty"`
	Delta     json.Number `json:"delta" form:"delta"`
}

type lineTarget struct {
	productID int
	size      string
}

// inputError names the request field that failed validation.
type inputError struct{ field, msg string }

func (e *inputError) Error() string { return e.field + ": " + e.msg }

func parseCartBody(c *fiber.Ctx) (cartBody, lineTarget, error) {
	var b cartBody
	if err := c.BodyParser(&b); err != nil {
		return b, lineTarget{}, &inputError{"body", "malformed request body"}
	}
	id, ok := validate.ProductID(string(b.ProductID))
	if !ok {
		return b, lineTarget{}, &inputError{"productId", "invalid productId"}
	}
	size, ok := validate.Size(b.Size)
	if !ok {
		return b, lineTarget{}, &inputError{"size", "invalid size"}
	}
	return b, lineTarget{productID: id, size: size}, nil
}

func reject(c *fiber.Ctx, err error) error {
	var ie *inputError
	if errors.As(err, &ie) {
		return badRequest(c, ie.field, ie.msg)
	}
	return err
}

func (h *CartHandler) respond(c *fiber.Ctx, sid, action string, t lineTarget, res cart.Result) error {
	applog.Audit(c, action, map[string]any{
		"product_id": t.productID,
		"size":       t.size,
		"outcome":    res.Outcome.String(),
	})
	out := fiber.Map{"outcome": res.Outcome.String(), "cart": h.Cart.View(c.UserContext(), sid)}
	if res.Applied() && res.Outcome != cart.Cleared {
		out["line"] = res.Line
	}
	return c.JSON(out)
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(h.Cart.View(c.UserContext(), h.Sessions.ensureSID(c)))
}

// Add clamps the requested quantity to the stock left for the product. A
// request that clamps to zero answers 200 with outcome "noop".
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	b, t, err := parseCartBody(c)
	if err != nil {
		return reject(c, err)
	}
	qty, ok := validate.Qty(string(b.Qty))
	if !ok {
		return badRequest(c, "qty", "invalid qty")
	}
	res, err := h.Cart.Add(c.UserContext(), sid, t.productID, qty, t.size)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	case errors.Is(err, services.ErrInvalidSize):
		return badRequest(c, "size", "size not available for this product")
	case err != nil:
		return err
	}
	return h.respond(c, sid, "cart.add", t, res)
}

// Change steps a line by delta, the cart page's +/- buttons.
func (h *CartHandler) Change(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	b, t, err := parseCartBody(c)
	if err != nil {
		return reject(c, err)
	}
	delta, ok := validate.Delta(string(b.Delta))
	if !ok {
		return badRequest(c, "delta", "invalid delta")
	}
	return h.respond(c, sid, "cart.change", t, h.Cart.ChangeQuantity(c.UserContext(), sid, t.productID, t.size, delta))
}

// Set overwrites a line's quantity; 0 removes the line.
func (h *CartHandler) Set(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	b, t, err := parseCartBody(c)
	if err != nil {
		return reject(c, err)
	}
	qty, ok := validate.SetQty(string(b.Qty))
	if !ok {
		return badRequest(c, "qty", "invalid qty")
	}
	return h.respond(c, sid, "cart.set", t, h.Cart.SetQuantity(c.UserContext(), sid, t.productID, t.size, qty))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	_, t, err := parseCartBody(c)
	if err != nil {
		return reject(c, err)
	}
	return h.respond(c, sid, "cart.remove", t, h.Cart.Remove(c.UserContext(), sid, t.productID, t.size))
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	return h.respond(c, sid, "cart.clear", lineTarget{}, h.Cart.Clear(c.UserContext(), sid))
}
