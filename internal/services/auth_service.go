package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"artlease/internal/domain"
	"artlease/internal/repos"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
	ErrPhoneTaken = errors.New("phone number already registered")
)

type AuthService struct {
	Users *repos.UserRepo
	Addrs *repos.AddressRepo
}

func (s *AuthService) Login(email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

func (s *AuthService) UserByID(id int64) (*domain.User, error) {
	return s.Users.ByID(id)
}

// RegisterInput carries a customer or vendor signup. Admins are never
// self-registered.
type RegisterInput struct {
	Role      string // CUSTOMER or VENDOR
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Password  string
	Address   domain.AddressInput

	// Vendor-only profile.
	ArtisticName string
	Bio          string
	Image        string

	Newsletter bool
}

// Register creates the account together with its deduplicated address.
func (s *AuthService) Register(in RegisterInput) (int64, error) {
	if in.Role != domain.RoleVendor {
		in.Role = domain.RoleCustomer
	}

	if taken, err := s.Users.EmailTaken(in.Email); err != nil {
		return 0, err
	} else if taken {
		return 0, ErrEmailTaken
	}
	if taken, err := s.Users.PhoneTaken(in.Phone); err != nil {
		return 0, err
	} else if taken {
		return 0, ErrPhoneTaken
	}

	addrID, err := s.Addrs.Ensure(in.Address)
	if err != nil {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return 0, err
	}

	return s.Users.Create(domain.User{
		Email:        in.Email,
		Phone:        in.Phone,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Hash:         string(hash),
		Role:         in.Role,
		AddressID:    addrID,
		ArtisticName: in.ArtisticName,
		Bio:          in.Bio,
		Image:        in.Image,
		Newsletter:   in.Newsletter,
	})
}
