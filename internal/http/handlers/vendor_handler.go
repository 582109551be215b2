package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"artlease/internal/domain"
	applog "artlease/internal/log"
	"artlease/internal/services"
	"artlease/internal/validate"
)

type VendorHandler struct {
	Vendor   *services.VendorService
	Catalog  *services.CatalogService
	MediaDir string
}

// Dashboard is the vendor management page: inventory plus the KPI block.
func (h *VendorHandler) Dashboard(c *fiber.Ctx) error {
	u := currentUser(c)
	items, err := h.Vendor.Items(u.ID)
	if err != nil {
		applog.Error(c, "vendor.items", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your inventory"})
	}
	kpi, err := h.Vendor.KPI(u.ID)
	if err != nil {
		applog.Error(c, "vendor.kpi", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your dashboard"})
	}
	cats, _ := h.Catalog.ListCategories()
	return render(c, "vendor_manage", fiber.Map{
		"Items": items, "KPI": kpi, "Categories": cats, "Message": c.Query("msg"),
	})
}

// Gallery redirects a vendor to their public gallery page.
func (h *VendorHandler) Gallery(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.Redirect(fmt.Sprintf("/vendors/%d", u.ID))
}

// artworkForm parses the shared publish/edit fields. Price is parsed as a
// decimal, never as a float.
func (h *VendorHandler) artworkForm(c *fiber.Ctx, vendorID int64) (domain.Artwork, string) {
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		return domain.Artwork{}, "Please give the artwork a title."
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price_per_week")))
	if err != nil || price.IsNegative() {
		return domain.Artwork{}, "Please enter a valid weekly price."
	}
	from, ok := validate.Date(c.FormValue("available_from"))
	if !ok {
		return domain.Artwork{}, "Available-from must be YYYY-MM-DD."
	}
	until, ok := validate.Date(c.FormValue("available_until"))
	if !ok {
		return domain.Artwork{}, "Available-until must be YYYY-MM-DD."
	}
	var catID int64
	if v := c.FormValue("category_id"); v != "" && v != "0" {
		if catID, ok = validate.ID(v); !ok {
			return domain.Artwork{}, "Unknown category."
		}
	}

	a := domain.Artwork{
		VendorID:       vendorID,
		CategoryID:     catID,
		Title:          title,
		Description:    c.FormValue("description"),
		PricePerWeek:   price.Round(2),
		AvailableFrom:  from,
		AvailableUntil: until,
		MaxQuantity:    validate.Qty(c.FormValue("max_quantity")),
		Status:         domain.StatusListed,
	}
	if st, ok := validate.ArtworkStatus(c.FormValue("status")); ok {
		a.Status = st
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
		if err := c.SaveFile(file, filepath.Join(h.MediaDir, name)); err != nil {
			applog.Error(c, "vendor.image.save", err, nil)
			return domain.Artwork{}, "Could not store the image. Please try again."
		}
		a.Image = name
	}
	return a, ""
}

func (h *VendorHandler) Publish(c *fiber.Ctx) error {
	u := currentUser(c)
	a, msg := h.artworkForm(c, u.ID)
	if msg != "" {
		return c.Redirect("/vendor?msg=" + escape(msg))
	}
	id, err := h.Vendor.Publish(a)
	if err != nil {
		applog.Error(c, "vendor.publish", err, nil)
		return c.Redirect("/vendor?msg=" + escape("Could not publish the artwork."))
	}
	applog.Audit(c, "artwork.publish", map[string]any{"artwork_id": id, "vendor_id": u.ID})
	return c.Redirect("/vendor?msg=" + escape("Artwork published."))
}

func (h *VendorHandler) EditForm(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Artwork not found"})
	}
	a, err := h.Catalog.GetArtwork(id)
	if err != nil || a.VendorID != u.ID {
		applog.Security(c, "access.denied.artwork", map[string]any{"artwork_id": id})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Artwork not found"})
	}
	cats, _ := h.Catalog.ListCategories()
	return render(c, "edit_artwork", fiber.Map{"A": a, "Categories": cats})
}

func (h *VendorHandler) Edit(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Artwork not found"})
	}
	a, msg := h.artworkForm(c, u.ID)
	if msg != "" {
		return c.Redirect(fmt.Sprintf("/vendor/artworks/%d/edit?msg=%s", id, escape(msg)))
	}
	a.ID = id
	if a.Image == "" {
		// No new upload: keep the stored image.
		if cur, err := h.Catalog.GetArtwork(id); err == nil {
			a.Image = cur.Image
		}
	}
	if err := h.Vendor.Edit(a); err != nil {
		applog.Error(c, "vendor.edit", err, map[string]any{"artwork_id": id})
		return c.Redirect("/vendor?msg=" + escape("Could not save the changes."))
	}
	applog.Audit(c, "artwork.edit", map[string]any{"artwork_id": id, "vendor_id": u.ID})
	return c.Redirect("/vendor?msg=" + escape("Artwork updated."))
}

// setStatus factors the relist/archive POSTs; the repo scopes by vendor id,
// so a vendor can only ever touch their own rows.
func (h *VendorHandler) setStatus(c *fiber.Ctx, apply func(artworkID, vendorID int64) error, action, done string) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/vendor?msg=" + escape("Artwork not found."))
	}
	if err := apply(id, u.ID); err != nil {
		applog.Error(c, action, err, map[string]any{"artwork_id": id})
		return c.Redirect("/vendor?msg=" + escape("Could not update the artwork."))
	}
	applog.Audit(c, action, map[string]any{"artwork_id": id, "vendor_id": u.ID})
	return c.Redirect("/vendor?msg=" + escape(done))
}

func (h *VendorHandler) Relist(c *fiber.Ctx) error {
	return h.setStatus(c, h.Vendor.List, "artwork.relist", "Artwork listed.")
}

func (h *VendorHandler) Archive(c *fiber.Ctx) error {
	return h.setStatus(c, h.Vendor.Archive, "artwork.archive", "Artwork unlisted.")
}

func (h *VendorHandler) Delete(c *fiber.Ctx) error {
	return h.setStatus(c, h.Vendor.Delete, "artwork.delete", "Artwork deleted.")
}
