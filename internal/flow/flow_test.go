package flow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/draft"
	"github.com/dmorneau/marinspect/internal/images"
	"github.com/dmorneau/marinspect/internal/submit"
)

// stubProfiles is a minimal in-memory profileRepository.
type stubProfiles struct {
	records map[string]*domain.Profile
}

func newStubProfiles(ps ...*domain.Profile) *stubProfiles {
	s := &stubProfiles{records: make(map[string]*domain.Profile)}
	for _, p := range ps {
		s.records[p.ID] = p
	}
	return s
}

func (s *stubProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (s *stubProfiles) Delete(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// stubSubmitter records requests and returns a canned result. A non-nil
// started/release pair turns it into a blocking submitter for in-flight
// tests.
type stubSubmitter struct {
	requests []submit.Request
	id       string
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (s *stubSubmitter) Submit(_ context.Context, req submit.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	return s.id, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completeDetails() draft.Details {
	return draft.Details{
		Date:      "2024-01-01",
		ShipName:  "MV Test",
		ShipType:  "Bulk Carrier",
		Port:      "Rotterdam",
		Inspector: "Jane Doe",
	}
}

// atPreview returns a controller advanced to the preview step with a complete
// draft and one image.
func atPreview(t *testing.T, profiles *stubProfiles, client *stubSubmitter) *Controller {
	t.Helper()
	c := New(profiles, client, testLogger())
	c.SetCredentials("test@example.com")
	require.NoError(t, c.Advance()) // login -> details
	c.SetDetails(completeDetails())
	c.AddImage(images.Pick{URI: "file:///a.jpg", Name: "imgA"})
	require.NoError(t, c.Advance()) // details -> upload
	require.NoError(t, c.Advance()) // upload -> preview
	require.Equal(t, StepPreview, c.Step())
	return c
}

func TestLinearAdvanceAndBack(t *testing.T) {
	c := New(newStubProfiles(), &stubSubmitter{}, testLogger())
	assert.Equal(t, StepLogin, c.Step())

	// Back at login is a no-op.
	c.Back()
	assert.Equal(t, StepLogin, c.Step())

	require.NoError(t, c.Advance())
	assert.Equal(t, StepDetails, c.Step())

	c.Back()
	assert.Equal(t, StepLogin, c.Step())
}

func TestAdvanceDetailsGatedByValidation(t *testing.T) {
	c := New(newStubProfiles(), &stubSubmitter{}, testLogger())
	require.NoError(t, c.Advance())

	err := c.Advance()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepDetails, c.Step())

	c.SetDetails(completeDetails())
	err = c.Advance()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"images"}, verr.Fields)

	c.AddImage(images.Pick{URI: "file:///a.jpg"})
	require.NoError(t, c.Advance())
	assert.Equal(t, StepUpload, c.Step())
}

func TestAdvanceBlockedAtPreviewAndReview(t *testing.T) {
	client := &stubSubmitter{id: "insp-1"}
	c := atPreview(t, newStubProfiles(), client)

	// preview -> review only through a successful submission.
	assert.Error(t, c.Advance())
	assert.Equal(t, StepPreview, c.Step())

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, StepReview, c.Step())

	// review is terminal going forward, but back to preview is allowed and
	// does not un-submit.
	assert.Error(t, c.Advance())
	c.Back()
	assert.Equal(t, StepPreview, c.Step())
	assert.Equal(t, "insp-1", c.InspectionID())
}

func TestSubmitOnlyFromPreview(t *testing.T) {
	c := New(newStubProfiles(), &stubSubmitter{id: "x"}, testLogger())
	assert.Error(t, c.Submit(context.Background()))
}

func TestSelectProfileSyncsInspectorAtDetails(t *testing.T) {
	p := &domain.Profile{ID: "p1", Name: "Captain John Smith", Company: "Fathom", Position: "Surveyor"}
	c := New(newStubProfiles(p), &stubSubmitter{}, testLogger())
	require.NoError(t, c.Advance()) // details

	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	assert.Equal(t, "Captain John Smith", c.Details().Inspector)

	selected, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, "p1", selected.ID)
}

func TestSelectProfileDoesNotSyncOffDetails(t *testing.T) {
	p := &domain.Profile{ID: "p1", Name: "Captain John Smith", Company: "Fathom", Position: "Surveyor"}
	c := New(newStubProfiles(p), &stubSubmitter{}, testLogger())

	// Still at login: binding works, inspector text untouched.
	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	assert.Empty(t, c.Details().Inspector)
}

func TestSelectProfileIdempotent(t *testing.T) {
	p := &domain.Profile{ID: "p1", Name: "Captain John Smith", Company: "Fathom", Position: "Surveyor"}
	c := New(newStubProfiles(p), &stubSubmitter{}, testLogger())
	require.NoError(t, c.Advance())

	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	afterFirst := c.Details()
	first, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	second, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, afterFirst, c.Details())
	assert.Equal(t, first, second)
}

func TestSelectUnknownProfile(t *testing.T) {
	c := New(newStubProfiles(), &stubSubmitter{}, testLogger())
	err := c.SelectProfile(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSelectedProfileReflectsStoreUpdates(t *testing.T) {
	profiles := newStubProfiles(&domain.Profile{ID: "p1", Name: "Before", Company: "C", Position: "P"})
	c := New(profiles, &stubSubmitter{}, testLogger())
	require.NoError(t, c.SelectProfile(context.Background(), "p1"))

	// The binding is by identity: a store update is visible on the next
	// resolution without any refresh step.
	profiles.records["p1"].Name = "After"

	resolved, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "After", resolved.Name)
}

func TestDeleteSelectedProfileClearsBinding(t *testing.T) {
	p := &domain.Profile{ID: "p1", Name: "Captain John Smith", Company: "Fathom", Position: "Surveyor"}
	client := &stubSubmitter{id: "insp-9"}
	profiles := newStubProfiles(p)

	c := New(profiles, client, testLogger())
	require.NoError(t, c.Advance())
	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	require.NoError(t, c.DeleteProfile(context.Background(), "p1"))

	// Binding cleared, inspector text retained as the manual fallback.
	resolved, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Equal(t, "Captain John Smith", c.Details().Inspector)

	// A subsequent submit uses the manual text and never fails on the
	// dangling reference.
	c.AddImage(images.Pick{URI: "file:///a.jpg"})
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, client.requests, 1)
	assert.Equal(t, "Captain John Smith", client.requests[0].Inspector)
	assert.Nil(t, client.requests[0].Profile)
}

func TestDeleteOtherProfileKeepsBinding(t *testing.T) {
	a := &domain.Profile{ID: "a", Name: "A", Company: "C", Position: "P"}
	b := &domain.Profile{ID: "b", Name: "B", Company: "C", Position: "P"}
	c := New(newStubProfiles(a, b), &stubSubmitter{}, testLogger())

	require.NoError(t, c.SelectProfile(context.Background(), "a"))
	require.NoError(t, c.DeleteProfile(context.Background(), "b"))

	resolved, err := c.SelectedProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "a", resolved.ID)
}

func TestSubmitPackagesDraftAndProfile(t *testing.T) {
	p := &domain.Profile{ID: "p1", Name: "Captain John Smith", Company: "Fathom", Position: "Surveyor"}
	client := &stubSubmitter{id: "insp-3"}
	c := atPreview(t, newStubProfiles(p), client)

	require.NoError(t, c.SelectProfile(context.Background(), "p1"))
	require.NoError(t, c.SetImagesPerPage(4))
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "test@example.com", req.Email)
	assert.Equal(t, "MV Test", req.ShipName)
	assert.Equal(t, 4, req.ImagesPerPage)
	require.NotNil(t, req.Profile)
	assert.Equal(t, "Fathom", req.Profile.Company)
	require.Len(t, req.Images, 1)
}

func TestSubmitIncludesAttachments(t *testing.T) {
	client := &stubSubmitter{id: "insp-8"}
	c := atPreview(t, newStubProfiles(), client)

	c.AttachLogo(domain.Image{URI: "logo.png", Name: "logo.png"})
	c.AttachShipImage(domain.Image{URI: "ship.jpg", Name: "ship.jpg"})
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.NotNil(t, req.Logo)
	assert.Equal(t, "logo.png", req.Logo.URI)
	require.NotNil(t, req.ShipImage)
	assert.Equal(t, "ship.jpg", req.ShipImage.URI)
}

func TestSubmitWithoutAttachments(t *testing.T) {
	client := &stubSubmitter{id: "insp-9"}
	c := atPreview(t, newStubProfiles(), client)
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, client.requests, 1)
	assert.Nil(t, client.requests[0].Logo)
	assert.Nil(t, client.requests[0].ShipImage)
}

func TestSubmitWithoutImagesMakesNoRequest(t *testing.T) {
	client := &stubSubmitter{id: "never"}
	c := atPreview(t, newStubProfiles(), client)
	require.NoError(t, c.RemoveImage(c.Images()[0].ID))

	err := c.Submit(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"images"}, verr.Fields)
	assert.Empty(t, client.requests)
	assert.Equal(t, StepPreview, c.Step())
}

func TestSubmitFailureKeepsStateForRetry(t *testing.T) {
	client := &stubSubmitter{err: &domain.ServerRejection{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"disk full"}`,
	}}
	c := atPreview(t, newStubProfiles(), client)

	err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// Draft fully populated, loading flag back down, step unchanged.
	assert.Equal(t, completeDetails(), c.Details())
	assert.Len(t, c.Images(), 1)
	assert.False(t, c.Submitting())
	assert.Equal(t, StepPreview, c.Step())
	assert.Empty(t, c.InspectionID())

	// Retry succeeds without re-entering anything.
	client.err = nil
	client.id = "insp-retry"
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, "insp-retry", c.InspectionID())
	assert.Equal(t, StepReview, c.Step())
}

func TestSubmitRejectsReentry(t *testing.T) {
	client := &stubSubmitter{
		id:      "insp-5",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := atPreview(t, newStubProfiles(), client)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	<-client.started
	assert.True(t, c.Submitting())

	// While the first submission is in flight a second one is refused, but
	// the rest of the controller stays usable.
	err := c.Submit(context.Background())
	assert.ErrorContains(t, err, "in flight")
	assert.NotEmpty(t, c.Details().ShipName)

	close(client.release)
	require.NoError(t, <-done)
	require.Len(t, client.requests, 1)
	assert.False(t, c.Submitting())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "login", StepLogin.String())
	assert.Equal(t, "review", StepReview.String())
}
