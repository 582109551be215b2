package services

import (
	"github.com/shopspring/decimal"

	"artlease/internal/domain"
	"artlease/internal/pricing"
	"artlease/internal/repos"
)

// VendorService covers the vendor management area: inventory CRUD,
// publish/archive and the KPI block.
type VendorService struct {
	Arts   *repos.ArtworkRepo
	Orders *repos.OrderRepo
}

func NewVendorService(arts *repos.ArtworkRepo, orders *repos.OrderRepo) *VendorService {
	return &VendorService{Arts: arts, Orders: orders}
}

func (s *VendorService) Items(vendorID int64) ([]domain.Artwork, error) {
	return s.Arts.ListByVendor(vendorID)
}

func (s *VendorService) Publish(a domain.Artwork) (int64, error) {
	if a.MaxQuantity < 1 {
		a.MaxQuantity = 1
	}
	if a.Status == "" {
		a.Status = domain.StatusUnlisted
	}
	return s.Arts.Create(a)
}

func (s *VendorService) Edit(a domain.Artwork) error {
	if a.MaxQuantity < 1 {
		a.MaxQuantity = 1
	}
	return s.Arts.Update(a)
}

// List relists an archived artwork.
func (s *VendorService) List(artworkID, vendorID int64) error {
	return s.Arts.SetStatus(artworkID, vendorID, domain.StatusListed)
}

// Archive unlists an artwork; carts holding it will fail checkout re-validation.
func (s *VendorService) Archive(artworkID, vendorID int64) error {
	return s.Arts.SetStatus(artworkID, vendorID, domain.StatusUnlisted)
}

func (s *VendorService) Delete(artworkID, vendorID int64) error {
	return s.Arts.Delete(artworkID, vendorID)
}

// KPI is the vendor dashboard rollup. Revenue comes from snapshotted order
// line prices, so later catalog price edits never move past revenue.
type KPI struct {
	InventoryTotal  int
	InventoryActive int
	OrdersCount     int
	Revenue         decimal.Decimal
}

func (s *VendorService) KPI(vendorID int64) (KPI, error) {
	counts, err := s.Arts.CountByVendor(vendorID)
	if err != nil {
		return KPI{}, err
	}
	sales, err := s.Orders.VendorSales(vendorID)
	if err != nil {
		return KPI{}, err
	}

	revenue := decimal.Zero
	seen := map[string]bool{}
	for _, row := range sales {
		revenue = revenue.Add(pricing.LineTotal(row.UnitPrice, row.Quantity, row.Weeks))
		seen[row.OrderID] = true
	}

	return KPI{
		InventoryTotal:  counts.Total,
		InventoryActive: counts.Listed,
		OrdersCount:     len(seen),
		Revenue:         revenue,
	}, nil
}
