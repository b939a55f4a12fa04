package domain

// Certifications and ShipTypes are the fixed reference lists offered when
// editing a profile. They are suggestions only: nothing validates draft or
// profile fields against them.
var Certifications = []string{
	"IMO Inspector",
	"Class Surveyor",
	"Port State Control",
	"Flag State Inspector",
	"ISM Auditor",
	"ISPS Auditor",
	"MLC Inspector",
	"Vetting Inspector",
	"Condition Surveyor",
	"Bunker Surveyor",
}

var ShipTypes = []string{
	"Tanker (Oil/Chemical/Gas)",
	"Bulk Carrier",
	"Container Ship",
	"General Cargo",
	"Ro-Ro",
	"Passenger Ship",
	"Offshore Vessel",
	"Tug/Barge",
	"Fishing Vessel",
	"Navy/Military",
}

// DemoProfile is the seed record created on first run when the store is
// empty, so a fresh install has a working example to select.
func DemoProfile() *Profile {
	return &Profile{
		Name:             "Captain John Smith",
		Company:          "Fathom Marine Services",
		Position:         "Senior Marine Surveyor",
		Phone:            "+1 (555) 123-4567",
		Email:            "john.smith@fathommarine.com",
		Experience:       "15 years",
		Certifications:   []string{"IMO Inspector", "Class Surveyor", "ISM Auditor"},
		ShipTypes:        []string{"Tanker (Oil/Chemical/Gas)", "Bulk Carrier", "Container Ship"},
		LicenseNumber:    "MSI-2023-0456",
		IssuingAuthority: "International Maritime Organization",
		ExpiryDate:       "2025-12-31",
		Address:          "123 Maritime Blvd, Port City, PC 10001",
		EmergencyContact: "+1 (555) 987-6543 (Sarah Smith)",
		Notes:            "Specialized in tanker inspections and safety audits",
	}
}
