package services

import (
	"database/sql"

	"artlease/internal/domain"
	"artlease/internal/repos"
)

// CatalogService serves the public browsing surface: home page, category
// listings, search and artwork details.
type CatalogService struct {
	Cats  *repos.CategoryRepo
	Arts  *repos.ArtworkRepo
	Users *repos.UserRepo
}

func NewCatalogService(cats *repos.CategoryRepo, arts *repos.ArtworkRepo, users *repos.UserRepo) *CatalogService {
	return &CatalogService{Cats: cats, Arts: arts, Users: users}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) GetCategory(id int64) (domain.Category, error) {
	return s.Cats.Get(id)
}

func (s *CatalogService) GetArtwork(id int64) (domain.Artwork, error) {
	return s.Arts.Get(id)
}

func (s *CatalogService) Latest(limit int, categoryID int64) ([]domain.Artwork, error) {
	return s.Arts.Latest(limit, categoryID)
}

func (s *CatalogService) ListByCategory(catID int64, page, pageSize int) ([]domain.Artwork, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return s.Arts.ListByCategory(catID, pageSize, (page-1)*pageSize)
}

func (s *CatalogService) Filter(q string, catID int64, minPrice, maxPrice string, page, pageSize int) ([]domain.Artwork, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return s.Arts.Filter(q, catID, minPrice, maxPrice, pageSize, (page-1)*pageSize)
}

func (s *CatalogService) ListVendors(limit int) ([]domain.User, error) {
	return s.Users.ListVendors(limit)
}

func (s *CatalogService) GetVendor(id int64) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if err != nil {
		return nil, err
	}
	if !u.IsVendor() {
		return nil, sql.ErrNoRows
	}
	return u, nil
}
