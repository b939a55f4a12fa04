package domain

import "time"

// Profile is a reusable inspector identity and credential bundle, independent
// of any single inspection.
type Profile struct {
	ID               string
	Name             string
	Company          string
	Position         string
	Phone            string
	Email            string
	Address          string
	EmergencyContact string
	LicenseNumber    string
	IssuingAuthority string
	ExpiryDate       string
	Experience       string
	Certifications   []string
	ShipTypes        []string
	ProfilePicture   string
	Signature        string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the certification and ship-type slices.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Certifications = append([]string(nil), p.Certifications...)
	c.ShipTypes = append([]string(nil), p.ShipTypes...)
	return &c
}

// Image is a captured or picked photo attached to an inspection. ID is
// assigned at insertion time and is the only mutation key; URI is the opaque
// source reference and may collide between picks.
type Image struct {
	ID          string
	URI         string
	Name        string
	MimeType    string
	Description string
}
