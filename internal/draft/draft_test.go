package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorneau/marinspect/internal/domain"
)

func TestValidateComplete(t *testing.T) {
	d := New()
	d.Details = Details{
		Date:      "2024-01-01",
		ShipName:  "MV Test",
		ShipType:  "Bulk Carrier",
		Port:      "Rotterdam",
		Inspector: "Jane Doe",
	}

	assert.NoError(t, d.Validate(3))
}

// Every combination of present/absent over the five scalar fields plus the
// image count: validation fails iff at least one is missing.
func TestValidateAllPresenceCombinations(t *testing.T) {
	fieldNames := []string{"date", "ship_name", "ship_type", "port", "inspector", "images"}

	for mask := 0; mask < 1<<6; mask++ {
		d := New()
		if mask&1 != 0 {
			d.Details.Date = "2024-01-01"
		}
		if mask&2 != 0 {
			d.Details.ShipName = "MV Test"
		}
		if mask&4 != 0 {
			d.Details.ShipType = "Bulk Carrier"
		}
		if mask&8 != 0 {
			d.Details.Port = "Rotterdam"
		}
		if mask&16 != 0 {
			d.Details.Inspector = "Jane Doe"
		}
		imageCount := 0
		if mask&32 != 0 {
			imageCount = 1
		}

		err := d.Validate(imageCount)
		if mask == 1<<6-1 {
			assert.NoError(t, err, "mask=%b", mask)
			continue
		}

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, "mask=%b", mask)
		for bit, name := range fieldNames {
			if mask&(1<<bit) == 0 {
				assert.Contains(t, verr.Fields, name, "mask=%b", mask)
			} else {
				assert.NotContains(t, verr.Fields, name, "mask=%b", mask)
			}
		}
	}
}

func TestValidateWhitespaceIsEmpty(t *testing.T) {
	d := New()
	d.Details = Details{
		Date:      "2024-01-01",
		ShipName:  "   ",
		ShipType:  "Bulk Carrier",
		Port:      "Rotterdam",
		Inspector: "Jane Doe",
	}

	var verr *domain.ValidationError
	require.ErrorAs(t, d.Validate(1), &verr)
	assert.Equal(t, []string{"ship_name"}, verr.Fields)
}

func TestSetImagesPerPage(t *testing.T) {
	d := New()
	assert.Equal(t, 2, d.ImagesPerPage)

	require.NoError(t, d.SetImagesPerPage(8))
	assert.Equal(t, 8, d.ImagesPerPage)

	assert.Error(t, d.SetImagesPerPage(5))
	assert.Error(t, d.SetImagesPerPage(0))
	assert.Error(t, d.SetImagesPerPage(24))
	assert.Equal(t, 8, d.ImagesPerPage)
}

func TestBindAndClearProfile(t *testing.T) {
	d := New()
	d.Details.Inspector = "manual name"

	p := &domain.Profile{ID: "p1", Name: "Captain John Smith"}
	d.BindProfile(p, true)
	assert.Equal(t, "p1", d.ProfileID)
	assert.Equal(t, "Captain John Smith", d.Details.Inspector)

	// Manual edits after binding are allowed and never clobbered.
	d.Details.Inspector = "edited by hand"
	d.ClearProfile()
	assert.Empty(t, d.ProfileID)
	assert.Equal(t, "edited by hand", d.Details.Inspector)
}

func TestBindProfileWithoutSync(t *testing.T) {
	d := New()
	d.Details.Inspector = "manual name"

	d.BindProfile(&domain.Profile{ID: "p2", Name: "Someone Else"}, false)
	assert.Equal(t, "p2", d.ProfileID)
	assert.Equal(t, "manual name", d.Details.Inspector)
}
