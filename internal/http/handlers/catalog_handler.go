package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "artlease/internal/log"
	"artlease/internal/services"
	"artlease/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// Home renders the landing page: latest listed artworks, a vendor strip and
// the category filter. Optional query params narrow the artwork grid.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	var catID int64
	if id, ok := validate.ID(c.Query("category_id")); ok {
		catID = id
	}

	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "home.categories", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the gallery"})
	}
	vendors, err := h.Catalog.ListVendors(12)
	if err != nil {
		applog.Error(c, "home.vendors", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the gallery"})
	}

	var artworks any
	if q, ok := validate.Q(c.Query("q")); ok {
		artworks, err = h.Catalog.Filter(q, catID, c.Query("min"), c.Query("max"), 1, 12)
	} else {
		artworks, err = h.Catalog.Latest(12, catID)
	}
	if err != nil {
		applog.Error(c, "home.artworks", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the gallery"})
	}

	return render(c, "home", fiber.Map{
		"Categories":     cats,
		"Vendors":        vendors,
		"Artworks":       artworks,
		"ActiveCategory": catID,
	})
}

// Category lists a category's Listed artworks.
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Category not found"})
	}
	cat, err := h.Catalog.GetCategory(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Category not found"})
	}
	items, err := h.Catalog.ListByCategory(id, 1, 24)
	if err != nil {
		applog.Error(c, "category.list", err, map[string]any{"category_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load this category"})
	}
	return render(c, "category", fiber.Map{"Category": cat, "Items": items})
}

// Detail shows a single artwork with its add-to-cart form.
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	art, err := h.Catalog.GetArtwork(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}

	vendor, _ := h.Catalog.GetVendor(art.VendorID)
	data := fiber.Map{"Art": art, "Vendor": vendor}
	if art.CategoryID > 0 {
		if cat, err := h.Catalog.GetCategory(art.CategoryID); err == nil {
			data["Category"] = cat
		}
	}
	return render(c, "artwork", data)
}

// VendorGallery is a vendor's public profile with their items, Listed first.
func (h *CatalogHandler) VendorGallery(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Vendor not found"})
	}
	vendor, err := h.Catalog.GetVendor(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Vendor not found"})
	}
	items, err := h.Catalog.Arts.ListByVendor(id)
	if err != nil {
		applog.Error(c, "vendor.gallery", err, map[string]any{"vendor_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load this gallery"})
	}
	return render(c, "vendor_gallery", fiber.Map{"Vendor": vendor, "Items": items})
}
