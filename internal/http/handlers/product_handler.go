package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Sessions Sessions
}

// parseFilter reads the listing query. Missing parameters keep their
// defaults; malformed ones name the offending field.
func parseFilter(c *fiber.Ctx) (catalog.Filter, string, bool) {
	f := catalog.DefaultFilter()
	if v := c.Query("category"); v != "" {
		cat, ok := validate.Category(v)
		if !ok {
			return f, "category", false
		}
		f.Category = cat
	}
	for _, p := range []struct {
		name string
		dst  *decimal.Decimal
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		m, ok := validate.Money(v)
		if !ok {
			return f, p.name, false
		}
		*p.dst = decimal.RequireFromString(m)
	}
	if v := c.Query("minRating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 5 {
			return f, "minRating", false
		}
		f.MinRating = r
	}
	if v := c.Query("sort"); v != "" {
		f.SortBy = catalog.ParseSort(v)
	}
	if v := c.Query("page"); v != "" {
		n, ok := validate.Page(v)
		if !ok {
			return f, "page", false
		}
		f.Page = n
	}
	return f, "", true
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	f, field, ok := parseFilter(c)
	if !ok {
		return badRequest(c, field, "invalid "+field)
	}
	return c.JSON(h.Catalog.ListProducts(f))
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	d, err := h.Catalog.GetProduct(c.UserContext(), h.Sessions.ensureSID(c), id)
	if errors.Is(err, services.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.Catalog.ListCategories()})
}
