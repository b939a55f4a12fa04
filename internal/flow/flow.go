// Package flow drives the inspection workflow: a linear step machine over
// the draft, the image collection, and the profile store, with submission as
// the only path into the final step.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/draft"
	"github.com/dmorneau/marinspect/internal/images"
	"github.com/dmorneau/marinspect/internal/submit"
)

// Step is one screen of the workflow. Transitions are strictly linear with
// explicit back edges; there is no forward skip.
type Step int

const (
	StepLogin Step = iota
	StepDetails
	StepUpload
	StepPreview
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepLogin:
		return "login"
	case StepDetails:
		return "details"
	case StepUpload:
		return "upload"
	case StepPreview:
		return "preview"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// forward omits preview: review is reachable only through a successful
// submission. backward omits login, the initial step.
var forward = map[Step]Step{
	StepLogin:   StepDetails,
	StepDetails: StepUpload,
	StepUpload:  StepPreview,
}

var backward = map[Step]Step{
	StepDetails: StepLogin,
	StepUpload:  StepDetails,
	StepPreview: StepUpload,
	StepReview:  StepPreview,
}

// profileRepository is the subset of store.ProfileStore the controller
// requires.
type profileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type submitter interface {
	Submit(ctx context.Context, req submit.Request) (string, error)
}

// Controller owns the draft and image collection and serializes every
// mutation through one mutex, preserving the single-writer property even on
// a multi-threaded runtime.
type Controller struct {
	mu           sync.Mutex
	step         Step
	email        string
	draft        *draft.Draft
	images       *images.Collection
	profiles     profileRepository
	client       submitter
	logger       *slog.Logger
	inspectionID string
	submitting   bool
}

func New(profiles profileRepository, client submitter, logger *slog.Logger) *Controller {
	return &Controller{
		step:     StepLogin,
		draft:    draft.New(),
		images:   images.NewCollection(),
		profiles: profiles,
		client:   client,
		logger:   logger,
	}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// SetCredentials records the login identity included in the submission
// payload. Authentication itself happens against the remote backend and is
// not a precondition for advancing.
func (c *Controller) SetCredentials(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = email
}

func (c *Controller) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

// Advance moves to the next step. details → upload first validates draft
// completeness; preview → review is only reachable through Submit; review is
// terminal.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step == StepDetails {
		if err := c.draft.Validate(c.images.Len()); err != nil {
			return err
		}
	}

	next, ok := forward[c.step]
	if !ok {
		if c.step == StepPreview {
			return fmt.Errorf("cannot advance past preview without a successful submission")
		}
		return fmt.Errorf("%s is the final step", c.step)
	}

	c.logger.Debug("step advance", "from", c.step.String(), "to", next.String())
	c.step = next
	return nil
}

// Back moves to the unique predecessor. At login it is a no-op. Returning
// from review to preview is permitted and does not un-submit.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := backward[c.step]
	if !ok {
		return
	}
	c.logger.Debug("step back", "from", c.step.String(), "to", prev.String())
	c.step = prev
}

func (c *Controller) Details() draft.Details {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Details
}

func (c *Controller) SetDetails(d draft.Details) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Details = d
}

func (c *Controller) AttachLogo(img domain.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Logo = &img
}

func (c *Controller) AttachShipImage(img domain.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.ShipImage = &img
}

func (c *Controller) AddImages(picks []images.Pick) []domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.AddMany(picks)
}

func (c *Controller) AddImage(pick images.Pick) domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.AddOne(pick)
}

func (c *Controller) SetImageDescription(id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.SetDescription(id, text)
}

func (c *Controller) RemoveImage(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Remove(id)
}

func (c *Controller) Images() []domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Images()
}

func (c *Controller) SetImagesPerPage(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.SetImagesPerPage(n)
}

func (c *Controller) ImagesPerPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.ImagesPerPage
}

// Pages returns the review layout for the current collection and per-page
// setting.
func (c *Controller) Pages() ([]images.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Paginate(c.draft.ImagesPerPage)
}

// SelectProfile binds the profile to the draft. The inspector text is
// synchronized to the profile name only while on the details step; the
// binding stays an overwritable default either way.
func (c *Controller) SelectProfile(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.profiles.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve profile: %w", err)
	}
	if p == nil {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}

	c.draft.BindProfile(p, c.step == StepDetails)
	return nil
}

func (c *Controller) ClearProfile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.ClearProfile()
}

// SelectedProfile resolves the draft's weak profile reference at read time.
// A stale binding (record since removed) resolves to nil rather than a
// cached copy.
func (c *Controller) SelectedProfile(ctx context.Context) (*domain.Profile, error) {
	c.mu.Lock()
	id := c.draft.ProfileID
	c.mu.Unlock()

	if id == "" {
		return nil, nil
	}
	return c.profiles.GetByID(ctx, id)
}

// DeleteProfile removes the stored profile and, when it is the currently
// bound one, clears the draft's binding. The inspector text is left as
// whatever the profile last set.
func (c *Controller) DeleteProfile(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.profiles.Delete(ctx, id); err != nil {
		return err
	}
	if c.draft.ProfileID == id {
		c.draft.ClearProfile()
	}
	return nil
}

func (c *Controller) InspectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inspectionID
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit validates, packages, and posts the inspection, transitioning to
// review on success. Exactly one submission is in flight at a time; while it
// runs the rest of the controller stays usable. Failures leave all state
// untouched so the user can retry without re-entering data.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()

	if c.step != StepPreview {
		c.mu.Unlock()
		return fmt.Errorf("submission is only available from preview, current step is %s", c.step)
	}
	if c.submitting {
		c.mu.Unlock()
		return fmt.Errorf("a submission is already in flight")
	}
	if err := c.draft.Validate(c.images.Len()); err != nil {
		c.mu.Unlock()
		return err
	}

	var profile *domain.Profile
	if id := c.draft.ProfileID; id != "" {
		p, err := c.profiles.GetByID(ctx, id)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to resolve profile: %w", err)
		}
		// A dangling binding degrades to the manual inspector text.
		profile = p
	}

	req := submit.Request{
		Email:         c.email,
		Date:          c.draft.Details.Date,
		ShipName:      c.draft.Details.ShipName,
		ShipType:      c.draft.Details.ShipType,
		Port:          c.draft.Details.Port,
		Inspector:     c.draft.Details.Inspector,
		ImagesPerPage: c.draft.ImagesPerPage,
		Logo:          c.draft.Logo,
		ShipImage:     c.draft.ShipImage,
		Profile:       profile,
		Images:        c.images.Images(),
	}

	c.submitting = true
	c.mu.Unlock()

	id, err := c.client.Submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		c.logger.Warn("submission failed", "error", err)
		return err
	}

	c.inspectionID = id
	c.step = StepReview
	return nil
}
