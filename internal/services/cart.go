package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"artlease/internal/domain"
	"artlease/internal/pricing"
)

// ErrLineNotFound means a cart mutation referenced a line id that is not
// (or no longer) in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// CartSession is where the cart lives between requests: the client session.
// Implementations persist the raw cart blob and the remembered delivery
// postcode; they never interpret either.
type CartSession interface {
	CartJSON() []byte
	SetCartJSON([]byte)
	Postcode() string
	SetPostcode(string)
}

// StoredLine is the persisted shape of one cart line. Line ids come from a
// counter stored with the cart, so an id keeps naming the same line even
// when other lines are removed.
type StoredLine struct {
	ID        int64 `json:"id"`
	ArtworkID int64 `json:"artwork_id"`
	Quantity  int   `json:"quantity"`
	Weeks     int   `json:"rentalDuration"`
}

type cartBlob struct {
	NextID int64        `json:"next_id"`
	Lines  []StoredLine `json:"items"`
}

// CartLine is a stored line joined against the live catalog.
type CartLine struct {
	ID       int64
	Quantity int
	Weeks    int
	Artwork  domain.Artwork
}

func (l CartLine) LineTotal() decimal.Decimal {
	return pricing.LineTotal(l.Artwork.PricePerWeek, l.Quantity, l.Weeks)
}

// ArtworkSource supplies live catalog state for rehydration.
type ArtworkSource interface {
	Get(artworkID int64) (domain.Artwork, error)
}

// CartStore owns every cart mutation so its invariants (guard-before-commit,
// merge-on-duplicate, clamping) hold no matter which handler calls in.
type CartStore struct {
	Arts  ArtworkSource
	Guard *AvailabilityGuard
}

func NewCartStore(arts ArtworkSource, guard *AvailabilityGuard) *CartStore {
	return &CartStore{Arts: arts, Guard: guard}
}

func (s *CartStore) load(sess CartSession) cartBlob {
	var blob cartBlob
	if raw := sess.CartJSON(); len(raw) > 0 {
		// A corrupt blob degrades to an empty cart rather than failing the request.
		_ = json.Unmarshal(raw, &blob)
	}
	return blob
}

func (s *CartStore) save(sess CartSession, blob cartBlob) {
	raw, _ := json.Marshal(blob)
	sess.SetCartJSON(raw)
}

// Add puts (artworkID, qty, weeks) into the cart. A line with the same
// artwork and the same duration is merged by adding quantities; the merged
// quantity must re-pass the availability guard or the add is rejected with
// the existing line left untouched. Returns ok plus a shopper-readable
// reason when rejected.
func (s *CartStore) Add(sess CartSession, artworkID int64, qty, weeks int) (bool, string) {
	if qty < 1 {
		qty = 1
	}
	if weeks < 1 {
		weeks = 1
	}

	blob := s.load(sess)

	for i, line := range blob.Lines {
		if line.ArtworkID == artworkID && line.Weeks == weeks {
			merged := line.Quantity + qty
			if err := s.Guard.Check(artworkID, merged, weeks, time.Time{}); err != nil {
				return false, err.Error()
			}
			blob.Lines[i].Quantity = merged
			s.save(sess, blob)
			return true, ""
		}
	}

	if err := s.Guard.Check(artworkID, qty, weeks, time.Time{}); err != nil {
		return false, err.Error()
	}

	blob.NextID++
	blob.Lines = append(blob.Lines, StoredLine{
		ID:        blob.NextID,
		ArtworkID: artworkID,
		Quantity:  qty,
		Weeks:     weeks,
	})
	s.save(sess, blob)
	return true, ""
}

// Update sets a line's quantity, clamped to [1,99]. The new quantity must
// re-pass the guard against the line's artwork and existing duration.
func (s *CartStore) Update(sess CartSession, lineID int64, qty int) error {
	if qty < 1 {
		qty = 1
	}
	if qty > 99 {
		qty = 99
	}

	blob := s.load(sess)
	for i, line := range blob.Lines {
		if line.ID == lineID {
			if err := s.Guard.Check(line.ArtworkID, qty, line.Weeks, time.Time{}); err != nil {
				return err
			}
			blob.Lines[i].Quantity = qty
			s.save(sess, blob)
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes a line. Removing an absent line is a no-op returning false.
func (s *CartStore) Remove(sess CartSession, lineID int64) bool {
	blob := s.load(sess)
	kept := blob.Lines[:0]
	for _, line := range blob.Lines {
		if line.ID != lineID {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(blob.Lines) {
		return false
	}
	blob.Lines = kept
	s.save(sess, blob)
	return true
}

// Clear empties the cart unconditionally.
func (s *CartStore) Clear(sess CartSession) {
	s.save(sess, cartBlob{})
}

// Snapshot rehydrates the cart against the live catalog. A line whose
// artwork has vanished is silently skipped; the stored list is not mutated.
// Artwork state (price, status) is always the latest stored value, never a
// cached copy.
func (s *CartStore) Snapshot(sess CartSession) ([]CartLine, error) {
	blob := s.load(sess)
	out := make([]CartLine, 0, len(blob.Lines))
	for _, line := range blob.Lines {
		art, err := s.Arts.Get(line.ArtworkID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, CartLine{
			ID:       line.ID,
			Quantity: line.Quantity,
			Weeks:    line.Weeks,
			Artwork:  art,
		})
	}
	return out, nil
}

// Total prices the rehydrated cart: line totals plus one delivery fee for
// the given postcode.
func (s *CartStore) Total(sess CartSession, postcode string) (decimal.Decimal, error) {
	lines, err := s.Snapshot(sess)
	if err != nil {
		return decimal.Zero, err
	}
	priced := make([]pricing.Line, len(lines))
	for i, l := range lines {
		priced[i] = pricing.Line{UnitPrice: l.Artwork.PricePerWeek, Quantity: l.Quantity, Weeks: l.Weeks}
	}
	return pricing.CartTotal(priced, postcode), nil
}
