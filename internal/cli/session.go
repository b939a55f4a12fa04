// Package cli implements the interactive inspection wizard: one terminal
// session walking the workflow steps, reading commands from stdin.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/draft"
	"github.com/dmorneau/marinspect/internal/flow"
	"github.com/dmorneau/marinspect/internal/images"
	"github.com/dmorneau/marinspect/internal/profileapi"
)

// profileLister extends the controller's view of profiles with listing for
// the selection menu.
type profileLister interface {
	List(ctx context.Context) ([]*domain.Profile, error)
}

// exporter produces the document links shown on the final step.
type exporter interface {
	ExportPDFURL(inspectionID string) string
	ExportWordURL(inspectionID string) string
}

// authenticator verifies credentials against the backend account service.
type authenticator interface {
	Login(ctx context.Context, email, password string) (*profileapi.Account, error)
}

type Session struct {
	controller *flow.Controller
	profiles   profileLister
	exporter   exporter
	auth       authenticator
	in         *bufio.Scanner
	out        io.Writer
	logger     *slog.Logger
}

func NewSession(controller *flow.Controller, profiles profileLister, exp exporter, auth authenticator, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	return &Session{
		controller: controller,
		profiles:   profiles,
		exporter:   exp,
		auth:       auth,
		in:         bufio.NewScanner(in),
		out:        out,
		logger:     logger,
	}
}

// Run drives the wizard until the user quits or input ends. Each step
// renders, reads one command, applies it, and re-renders.
func (s *Session) Run(ctx context.Context) error {
	for {
		var err error
		switch s.controller.Step() {
		case flow.StepLogin:
			err = s.loginStep(ctx)
		case flow.StepDetails:
			err = s.detailsStep(ctx)
		case flow.StepUpload:
			err = s.uploadStep()
		case flow.StepPreview:
			err = s.previewStep(ctx)
		case flow.StepReview:
			err = s.reviewStep()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) loginStep(ctx context.Context) error {
	s.printf("\n== Login ==\n")
	email, err := s.prompt("Email")
	if err != nil {
		return err
	}
	if email == "" {
		return io.EOF
	}

	// Backend authentication is best effort: a failed or skipped login still
	// proceeds, the session just works without a server-side account.
	if s.auth != nil {
		password, err := s.prompt("Password (blank to skip)")
		if err != nil {
			return err
		}
		if password != "" {
			acct, err := s.auth.Login(ctx, email, password)
			if err != nil {
				s.printf("login failed, continuing offline: %v\n", err)
			} else {
				s.printf("welcome, %s (%s)\n", acct.FullName, acct.Company)
			}
		}
	}

	s.controller.SetCredentials(email)
	if err := s.controller.Advance(); err != nil {
		s.printf("error: %v\n", err)
	}
	return nil
}

func (s *Session) detailsStep(ctx context.Context) error {
	d := s.controller.Details()
	s.printf("\n== Inspection Details ==\n")
	s.printf("  date:      %s\n  ship:      %s\n  type:      %s\n  port:      %s\n  inspector: %s\n",
		d.Date, d.ShipName, d.ShipType, d.Port, d.Inspector)
	s.printf("  images:    %d\n", len(s.controller.Images()))
	s.printf("commands: edit, profile, clear-profile, add <path...>, logo <path>, ship-image <path>, next, back, quit\n")

	line, err := s.prompt("details")
	if err != nil {
		return err
	}
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "edit":
		return s.editDetails(d)
	case "profile":
		return s.selectProfile(ctx)
	case "clear-profile":
		s.controller.ClearProfile()
	case "add":
		s.addImages(rest)
	case "logo":
		if img, ok := s.attachment(rest); ok {
			s.controller.AttachLogo(img)
		}
	case "ship-image":
		if img, ok := s.attachment(rest); ok {
			s.controller.AttachShipImage(img)
		}
	case "next":
		if err := s.controller.Advance(); err != nil {
			s.printf("error: %v\n", err)
		}
	case "back":
		s.controller.Back()
	case "quit":
		return io.EOF
	default:
		s.printf("unknown command %q\n", cmd)
	}
	return nil
}

func (s *Session) attachment(path string) (domain.Image, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		s.printf("usage: logo|ship-image <path>\n")
		return domain.Image{}, false
	}
	return domain.Image{URI: path, Name: filepath.Base(path)}, true
}

func (s *Session) addImages(rest string) {
	if rest == "" {
		s.printf("usage: add <path...>\n")
		return
	}
	var picks []images.Pick
	for _, uri := range strings.Fields(rest) {
		picks = append(picks, images.Pick{URI: uri})
	}
	added := s.controller.AddImages(picks)
	s.printf("added %d image(s)\n", len(added))
}

func (s *Session) editDetails(d draft.Details) error {
	s.printf("ship types: %s\n", strings.Join(domain.ShipTypes, ", "))
	fields := []struct {
		label string
		value *string
	}{
		{"Date (YYYY-MM-DD)", &d.Date},
		{"Ship name", &d.ShipName},
		{"Ship type", &d.ShipType},
		{"Port", &d.Port},
		{"Inspector", &d.Inspector},
	}
	for _, f := range fields {
		v, err := s.promptDefault(f.label, *f.value)
		if err != nil {
			return err
		}
		*f.value = v
	}
	s.controller.SetDetails(d)
	return nil
}

func (s *Session) selectProfile(ctx context.Context) error {
	list, err := s.profiles.List(ctx)
	if err != nil {
		s.printf("error: %v\n", err)
		return nil
	}
	if len(list) == 0 {
		s.printf("no saved profiles\n")
		return nil
	}
	for i, p := range list {
		s.printf("  %d. %s (%s, %s)\n", i+1, p.Name, p.Position, p.Company)
	}
	choice, err := s.prompt("Profile number")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(choice)
	if convErr != nil || n < 1 || n > len(list) {
		s.printf("invalid selection %q\n", choice)
		return nil
	}
	if err := s.controller.SelectProfile(ctx, list[n-1].ID); err != nil {
		s.printf("error: %v\n", err)
	}
	return nil
}

func (s *Session) uploadStep() error {
	imgs := s.controller.Images()
	s.printf("\n== Images (%d) ==\n", len(imgs))
	for i, img := range imgs {
		desc := img.Description
		if desc == "" {
			desc = "(no description)"
		}
		s.printf("  %d. %s  %s\n", i+1, img.Name, desc)
	}
	s.printf("commands: add <path...>, describe <n> <text>, remove <n>, per-page <n>, next, back, quit\n")

	line, err := s.prompt("upload")
	if err != nil {
		return err
	}
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "add":
		s.addImages(rest)
	case "describe":
		idxStr, text, _ := strings.Cut(rest, " ")
		img, ok := s.imageAt(imgs, idxStr)
		if !ok {
			return nil
		}
		if err := s.controller.SetImageDescription(img.ID, text); err != nil {
			s.printf("error: %v\n", err)
		}
	case "remove":
		img, ok := s.imageAt(imgs, rest)
		if !ok {
			return nil
		}
		if err := s.controller.RemoveImage(img.ID); err != nil {
			s.printf("error: %v\n", err)
		}
	case "per-page":
		n, convErr := strconv.Atoi(strings.TrimSpace(rest))
		if convErr != nil {
			s.printf("usage: per-page <even number between %d and %d>\n", images.MinPerPage, images.MaxPerPage)
			return nil
		}
		if err := s.controller.SetImagesPerPage(n); err != nil {
			s.printf("error: %v\n", err)
		}
	case "next":
		if err := s.controller.Advance(); err != nil {
			s.printf("error: %v\n", err)
		}
	case "back":
		s.controller.Back()
	case "quit":
		return io.EOF
	default:
		s.printf("unknown command %q\n", cmd)
	}
	return nil
}

func (s *Session) imageAt(imgs []domain.Image, idxStr string) (domain.Image, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(idxStr))
	if err != nil || n < 1 || n > len(imgs) {
		s.printf("invalid image number %q\n", idxStr)
		return domain.Image{}, false
	}
	return imgs[n-1], true
}

func (s *Session) previewStep(ctx context.Context) error {
	s.printf("\n== Preview ==\n")
	pages, err := s.controller.Pages()
	if err != nil {
		s.printf("error: %v\n", err)
	} else {
		s.renderPages(pages)
	}
	s.printf("commands: submit, back, quit\n")

	cmd, err := s.prompt("preview")
	if err != nil {
		return err
	}
	switch cmd {
	case "submit":
		if err := s.controller.Submit(ctx); err != nil {
			s.printf("submission failed: %v\n", err)
		}
	case "back":
		s.controller.Back()
	case "quit":
		return io.EOF
	default:
		s.printf("unknown command %q\n", cmd)
	}
	return nil
}

// renderPages prints the two-column report layout, one block per page.
func (s *Session) renderPages(pages []images.Page) {
	for i, page := range pages {
		s.printf("page %d/%d:\n", i+1, len(pages))
		rows := len(page.Left)
		if len(page.Right) > rows {
			rows = len(page.Right)
		}
		for r := 0; r < rows; r++ {
			left, right := "", ""
			if r < len(page.Left) {
				left = page.Left[r].Name
			}
			if r < len(page.Right) {
				right = page.Right[r].Name
			}
			s.printf("  %-30s %s\n", left, right)
		}
	}
}

func (s *Session) reviewStep() error {
	id := s.controller.InspectionID()
	s.printf("\n== Submitted ==\n")
	s.printf("inspection id: %s\n", id)
	s.printf("pdf:  %s\n", s.exporter.ExportPDFURL(id))
	s.printf("word: %s\n", s.exporter.ExportWordURL(id))
	s.printf("commands: back, quit\n")

	cmd, err := s.prompt("review")
	if err != nil {
		return err
	}
	switch cmd {
	case "back":
		s.controller.Back()
	case "quit", "":
		return io.EOF
	default:
		s.printf("unknown command %q\n", cmd)
	}
	return nil
}

func (s *Session) prompt(label string) (string, error) {
	s.printf("%s> ", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// promptDefault keeps the current value when the user enters nothing.
func (s *Session) promptDefault(label, current string) (string, error) {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := s.prompt(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
