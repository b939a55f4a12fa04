// Package images holds the ordered collection of inspection photos and the
// pagination used by the review layout.
package images

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmorneau/marinspect/internal/domain"
)

// PerPage bounds for the review layout. Only even values are offered so each
// page splits into two equal-width columns.
const (
	MinPerPage = 2
	MaxPerPage = 20
)

// ValidPerPage reports whether n is an even integer in the offered range.
func ValidPerPage(n int) bool {
	return n >= MinPerPage && n <= MaxPerPage && n%2 == 0
}

// Pick is a newly acquired image before insertion. Name and MimeType may be
// empty; defaults are generated on add.
type Pick struct {
	URI      string
	Name     string
	MimeType string
}

// Collection is the ordered list of inspection images. Every image gets a
// generated identifier at insertion time; all mutations key off that
// identifier, never the source URI.
type Collection struct {
	items []domain.Image
}

func NewCollection() *Collection {
	return &Collection{}
}

// AddMany appends a batch of picked images, generating a name for each pick
// that did not provide one.
func (c *Collection) AddMany(picks []Pick) []domain.Image {
	ts := time.Now().Unix()
	added := make([]domain.Image, 0, len(picks))
	for i, pick := range picks {
		name := pick.Name
		if name == "" {
			name = fmt.Sprintf("photo_%d_%d.jpg", ts, i)
		}
		img := c.append(pick, name)
		added = append(added, img)
	}
	return added
}

// AddOne appends a single image, e.g. from direct capture.
func (c *Collection) AddOne(pick Pick) domain.Image {
	name := pick.Name
	if name == "" {
		name = fmt.Sprintf("camera_%d.jpg", time.Now().Unix())
	}
	return c.append(pick, name)
}

func (c *Collection) append(pick Pick, name string) domain.Image {
	mimeType := pick.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	img := domain.Image{
		ID:       uuid.NewString(),
		URI:      pick.URI,
		Name:     name,
		MimeType: mimeType,
	}
	c.items = append(c.items, img)
	return img
}

// SetDescription replaces the description of the image with the given
// identifier. Unknown identifiers are an error, not a silent no-op.
func (c *Collection) SetDescription(id, text string) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Description = text
			return nil
		}
	}
	return fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
}

// Remove deletes the image with the given identifier, preserving the order
// of the remainder.
func (c *Collection) Remove(id string) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
}

func (c *Collection) Len() int {
	return len(c.items)
}

// Images returns a copy of the ordered image list.
func (c *Collection) Images() []domain.Image {
	out := make([]domain.Image, len(c.items))
	copy(out, c.items)
	return out
}

// Page is one review page: two equal-width columns in original order, column
// Left holding the first half of the page's chunk and Right the second.
type Page struct {
	Left  []domain.Image
	Right []domain.Image
}

// Paginate partitions the collection into consecutive chunks of perPage
// images (the last chunk may be shorter) and splits each chunk into its two
// columns. perPage must satisfy ValidPerPage.
func (c *Collection) Paginate(perPage int) ([]Page, error) {
	if !ValidPerPage(perPage) {
		return nil, fmt.Errorf("images per page must be an even integer between %d and %d, got %d",
			MinPerPage, MaxPerPage, perPage)
	}

	perColumn := perPage / 2
	var pages []Page
	for start := 0; start < len(c.items); start += perPage {
		end := min(start+perPage, len(c.items))
		chunk := c.items[start:end]

		split := min(perColumn, len(chunk))
		page := Page{
			Left:  append([]domain.Image(nil), chunk[:split]...),
			Right: append([]domain.Image(nil), chunk[split:]...),
		}
		pages = append(pages, page)
	}
	return pages, nil
}
