// Package submit serializes a finished inspection draft into the backend's
// multipart contract and interprets the response.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/media"
)

type Client struct {
	baseURL string
	client  *http.Client
	library media.Library
	logger  *slog.Logger
}

// NewClient creates a submission client for the inspection backend. No
// client-side timeout is applied; callers control cancellation through the
// request context and the transport's own limits.
func NewClient(baseURL string, library media.Library, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		library: library,
		logger:  logger,
	}
}

// Request is the fully resolved payload for one submission: the draft's
// scalar fields, the resolved profile (nil when none is bound), and the
// ordered image list.
type Request struct {
	Email         string
	Date          string
	ShipName      string
	ShipType      string
	Port          string
	Inspector     string
	ImagesPerPage int
	Logo          *domain.Image
	ShipImage     *domain.Image
	Profile       *domain.Profile
	Images        []domain.Image
}

type response struct {
	InspectionID string `json:"inspection_id"`
}

// Submit posts the inspection and returns the backend's inspection
// identifier. Failures are mapped to the shared taxonomy: transport errors
// become NetworkError, non-2xx responses become ServerRejection with the raw
// body. The caller's in-memory state is never touched.
func (c *Client) Submit(ctx context.Context, req Request) (string, error) {
	payload, contentType, err := c.encode(ctx, req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inspection", payload)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Info("submitting inspection",
		"ship_name", req.ShipName, "port", req.Port, "images", len(req.Images),
		"profile_bound", req.Profile != nil)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &domain.NetworkError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.ServerRejection{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.InspectionID == "" {
		return "", fmt.Errorf("response missing inspection_id")
	}

	c.logger.Info("inspection submitted", "inspection_id", out.InspectionID)
	return out.InspectionID, nil
}

// encode builds the multipart body. Field names are the backend's fixed
// contract; the images and descriptions parts are order-correlated and must
// stay positionally aligned.
func (c *Client) encode(ctx context.Context, req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	scalars := []struct{ field, value string }{
		{"email", req.Email},
		{"date", req.Date},
		{"ship_name", req.ShipName},
		{"ship_type", req.ShipType},
		{"port", req.Port},
		{"inspector", req.Inspector},
		{"images_per_page", strconv.Itoa(req.ImagesPerPage)},
	}
	for _, s := range scalars {
		if err := w.WriteField(s.field, s.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", s.field, err)
		}
	}

	if req.Logo != nil {
		if err := c.writeFilePart(ctx, w, "logo", req.Logo.Name, req.Logo.URI); err != nil {
			return nil, "", err
		}
	}
	if req.ShipImage != nil {
		if err := c.writeFilePart(ctx, w, "ship_image", req.ShipImage.Name, req.ShipImage.URI); err != nil {
			return nil, "", err
		}
	}

	if req.Profile != nil {
		if err := c.writeProfileParts(ctx, w, req.Profile); err != nil {
			return nil, "", err
		}
	}

	for _, img := range req.Images {
		if err := c.writeFilePart(ctx, w, "images", img.Name, img.URI); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("descriptions", img.Description); err != nil {
			return nil, "", fmt.Errorf("failed to write description: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) writeProfileParts(ctx context.Context, w *multipart.Writer, p *domain.Profile) error {
	fields := []struct{ field, value string }{
		{"inspector_company", p.Company},
		{"inspector_position", p.Position},
		{"inspector_phone", p.Phone},
		{"inspector_email", p.Email},
		{"inspector_experience", p.Experience},
		{"inspector_certifications", strings.Join(p.Certifications, ", ")},
		{"inspector_license", p.LicenseNumber},
	}
	for _, f := range fields {
		if err := w.WriteField(f.field, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.field, err)
		}
	}

	if p.ProfilePicture != "" {
		if err := c.writeFilePart(ctx, w, "inspector_photo", "profile_picture.jpg", p.ProfilePicture); err != nil {
			return err
		}
	}
	if p.Signature != "" {
		if err := c.writeFilePart(ctx, w, "inspector_signature", "signature.jpg", p.Signature); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) writeFilePart(ctx context.Context, w *multipart.Writer, field, name, uri string) error {
	r, _, err := c.library.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			c.logger.Error("failed to close media reader", "uri", uri, "error", err)
		}
	}()

	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}

// ExportPDFURL returns the link to the generated PDF for an inspection. The
// document is opened externally, never fetched in-process.
func (c *Client) ExportPDFURL(inspectionID string) string {
	return fmt.Sprintf("%s/export/%s", c.baseURL, inspectionID)
}

// ExportWordURL returns the link to the generated Word document.
func (c *Client) ExportWordURL(inspectionID string) string {
	return fmt.Sprintf("%s/export-word/%s", c.baseURL, inspectionID)
}
