package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmorneau/marinspect/internal/domain"
)

const profileColumns = `id, name, company, position, phone, email, address, emergency_contact,
	license_number, issuing_authority, expiry_date, experience, certifications, ship_types,
	profile_picture, signature, notes, created_at, updated_at`

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// validateProfile enforces the required fields for persistence. All other
// fields, including email and license number, are free-form and may repeat
// across profiles.
func validateProfile(p *domain.Profile) error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(p.Position) == "" {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	return nil
}

// Create validates the profile, assigns a fresh identity, and persists it.
// The passed profile is not mutated; the stored record is returned.
func (s *ProfileStore) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, company, position, phone, email, address, emergency_contact,
			license_number, issuing_authority, expiry_date, experience, certifications, ship_types,
			profile_picture, signature, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.Company, p.Position, p.Phone, p.Email, p.Address, p.EmergencyContact,
		p.LicenseNumber, p.IssuingAuthority, p.ExpiryDate, p.Experience,
		joinList(p.Certifications), joinList(p.ShipTypes),
		p.ProfilePicture, p.Signature, p.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns the profile or (nil, nil) when no record matches.
func (s *ProfileStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// Update replaces the stored record matching id with the given fields. The
// identity and created_at are preserved.
func (s *ProfileStore) Update(ctx context.Context, id string, p *domain.Profile) (*domain.Profile, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET name = ?, company = ?, position = ?, phone = ?, email = ?, address = ?,
			emergency_contact = ?, license_number = ?, issuing_authority = ?, expiry_date = ?,
			experience = ?, certifications = ?, ship_types = ?, profile_picture = ?, signature = ?,
			notes = ?, updated_at = datetime('now')
		WHERE id = ?
	`, p.Name, p.Company, p.Position, p.Phone, p.Email, p.Address, p.EmergencyContact,
		p.LicenseNumber, p.IssuingAuthority, p.ExpiryDate, p.Experience,
		joinList(p.Certifications), joinList(p.ShipTypes),
		p.ProfilePicture, p.Signature, p.Notes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM profiles WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Duplicate creates a new profile with a fresh identity, all fields copied
// and the name suffixed with a copy marker.
func (s *ProfileStore) Duplicate(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	dup := p.Clone()
	dup.Name = p.Name + " (Copy)"
	return s.Create(ctx, dup)
}

func (s *ProfileStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var certs, shipTypes string
	err := row.Scan(&p.ID, &p.Name, &p.Company, &p.Position, &p.Phone, &p.Email, &p.Address,
		&p.EmergencyContact, &p.LicenseNumber, &p.IssuingAuthority, &p.ExpiryDate, &p.Experience,
		&certs, &shipTypes, &p.ProfilePicture, &p.Signature, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Certifications = splitList(certs)
	p.ShipTypes = splitList(shipTypes)
	return p, nil
}

// Classification sets are stored comma-joined. The reference lists contain
// no commas, so the encoding round-trips.
func joinList(xs []string) string {
	return strings.Join(xs, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
