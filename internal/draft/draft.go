// Package draft holds the mutable in-progress inspection record.
package draft

import (
	"fmt"
	"strings"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/images"
)

// Details are the scalar inspection fields captured on the details step.
type Details struct {
	Date      string
	ShipName  string
	ShipType  string
	Port      string
	Inspector string
}

// Draft is the in-progress inspection before submission. ProfileID is a weak
// reference: it holds only the identifier and must be resolved against the
// profile store at read time, never cached as a denormalized copy.
type Draft struct {
	Details       Details
	Logo          *domain.Image
	ShipImage     *domain.Image
	ImagesPerPage int
	ProfileID     string
}

func New() *Draft {
	return &Draft{ImagesPerPage: images.MinPerPage}
}

// SetImagesPerPage rejects values outside the offered even range.
func (d *Draft) SetImagesPerPage(n int) error {
	if !images.ValidPerPage(n) {
		return fmt.Errorf("images per page must be an even integer between %d and %d, got %d",
			images.MinPerPage, images.MaxPerPage, n)
	}
	d.ImagesPerPage = n
	return nil
}

// BindProfile attaches the profile by identity. When syncInspector is set the
// inspector text is overwritten with the profile's name; the binding is a
// convenience default and later manual edits are never prevented.
func (d *Draft) BindProfile(p *domain.Profile, syncInspector bool) {
	d.ProfileID = p.ID
	if syncInspector {
		d.Details.Inspector = p.Name
	}
}

// ClearProfile drops the binding. The inspector text keeps whatever value the
// profile last set; it is not repopulated.
func (d *Draft) ClearProfile() {
	d.ProfileID = ""
}

// Validate checks completeness before the upload step: all scalar details
// non-empty and at least one image. Logo, ship image, and profile binding are
// always optional, and no format or enumeration checks apply.
func (d *Draft) Validate(imageCount int) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"date", d.Details.Date},
		{"ship_name", d.Details.ShipName},
		{"ship_type", d.Details.ShipType},
		{"port", d.Details.Port},
		{"inspector", d.Details.Inspector},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if imageCount == 0 {
		missing = append(missing, "images")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	return nil
}
