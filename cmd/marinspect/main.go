package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmorneau/marinspect/internal/cli"
	"github.com/dmorneau/marinspect/internal/config"
	"github.com/dmorneau/marinspect/internal/db"
	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/flow"
	"github.com/dmorneau/marinspect/internal/logging"
	"github.com/dmorneau/marinspect/internal/media/local"
	"github.com/dmorneau/marinspect/internal/profileapi"
	"github.com/dmorneau/marinspect/internal/store"
	"github.com/dmorneau/marinspect/internal/submit"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// app holds the wired dependencies shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *sql.DB
	profiles *store.ProfileStore
	cleanup  func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "marinspect",
		Short:   "Marine inspection reports from the terminal",
		Long:    "marinspect collects ship inspection details, images, and inspector profiles, and submits them to the report backend.",
		Version: version,
	}
	root.AddCommand(inspectCmd(), profilesCmd(), accountCmd())
	return root
}

// setup loads config, logging, the database, and the profile store. The
// returned cleanup closes all of it.
func setup() (*app, error) {
	cfg := config.Load()

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		profiles: store.NewProfileStore(database),
		cleanup: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
			closeLog()
		},
	}

	if cfg.SeedDemo {
		if err := a.seedDemoProfile(context.Background()); err != nil {
			logger.Error("failed to seed demo profile", "error", err)
		}
	}
	return a, nil
}

// seedDemoProfile inserts the demo inspector into an empty store so the
// selection menu is never empty on first run.
func (a *app) seedDemoProfile(ctx context.Context) error {
	n, err := a.profiles.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	_, err = a.profiles.Create(ctx, domain.DemoProfile())
	return err
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Run the interactive inspection wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			library, err := local.NewLocalLibrary(a.cfg.MediaPath)
			if err != nil {
				return fmt.Errorf("failed to open media directory: %w", err)
			}

			client := submit.NewClient(a.cfg.APIBaseURL, library, a.logger)
			api := profileapi.NewClient(a.cfg.APIBaseURL, a.logger)
			controller := flow.New(a.profiles, client, a.logger)
			session := cli.NewSession(controller, a.profiles, client, api, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
			return session.Run(cmd.Context())
		},
	}
}

// profileFlags mirrors the editable profile fields.
type profileFlags struct {
	name           string
	company        string
	position       string
	phone          string
	email          string
	experience     string
	license        string
	certifications []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Inspector name")
	fs.StringVar(&f.company, "company", "", "Company")
	fs.StringVar(&f.position, "position", "", "Position")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.experience, "experience", "", "Years of experience")
	fs.StringVar(&f.license, "license", "", "License number")
	fs.StringSliceVar(&f.certifications, "cert", nil, "Certification (may be repeated)")
}

func (f *profileFlags) toProfile() *domain.Profile {
	return &domain.Profile{
		Name:           f.name,
		Company:        f.company,
		Position:       f.position,
		Phone:          f.phone,
		Email:          f.email,
		Experience:     f.experience,
		LicenseNumber:  f.license,
		Certifications: f.certifications,
	}
}

// apply copies only the flags the user actually set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p *domain.Profile) {
	fs := cmd.Flags()
	if fs.Changed("name") {
		p.Name = f.name
	}
	if fs.Changed("company") {
		p.Company = f.company
	}
	if fs.Changed("position") {
		p.Position = f.position
	}
	if fs.Changed("phone") {
		p.Phone = f.phone
	}
	if fs.Changed("email") {
		p.Email = f.email
	}
	if fs.Changed("experience") {
		p.Experience = f.experience
	}
	if fs.Changed("license") {
		p.LicenseNumber = f.license
	}
	if fs.Changed("cert") {
		p.Certifications = f.certifications
	}
}

func profilesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "profiles",
		Short: "Manage saved inspector profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			profiles, err := a.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPOSITION\tCOMPANY")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Position, p.Company)
			}
			return w.Flush()
		},
	}

	var addFlags profileFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a new inspector profile",
		Long: "Saves a new inspector profile. Name, company, and position are required.\n\n" +
			"Common certifications: " + strings.Join(domain.Certifications, ", ") + "\n" +
			"Ship types: " + strings.Join(domain.ShipTypes, ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			created, err := a.profiles.Create(cmd.Context(), addFlags.toProfile())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	addFlags.register(add)

	var updateFlags profileFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			p, err := a.profiles.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("profile %s: %w", args[0], domain.ErrNotFound)
			}

			updateFlags.apply(cmd, p)
			updated, err := a.profiles.Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", updated.Name)
			return nil
		},
	}
	updateFlags.register(update)

	var force bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			if !force && !confirm(cmd, fmt.Sprintf("delete profile %s?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			return a.profiles.Delete(cmd.Context(), args[0])
		},
	}
	del.Flags().BoolVar(&force, "force", false, "Delete without confirmation")

	duplicate := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Duplicate a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			dup, err := a.profiles.Duplicate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", dup.ID, dup.Name)
			return nil
		},
	}

	root.AddCommand(list, add, update, del, duplicate)
	return root
}

// confirm asks a yes/no question on the command's input and returns true only
// for an explicit yes.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func accountCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "account",
		Short: "Manage the remote backend account",
	}

	newAPIClient := func() (*profileapi.Client, func(), error) {
		cfg := config.Load()
		logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		return profileapi.NewClient(cfg.APIBaseURL, logger), closeLog, nil
	}

	var password string

	login := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and print the account id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, done, err := newAPIClient()
			if err != nil {
				return err
			}
			defer done()

			acct, err := api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s, %s)\n", acct.UserID, acct.FullName, acct.Title, acct.Company)
			return nil
		},
	}
	login.Flags().StringVar(&password, "password", "", "Account password")

	var signupPassword string
	signup := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create a backend account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, done, err := newAPIClient()
			if err != nil {
				return err
			}
			defer done()

			acct, err := api.Signup(cmd.Context(), args[0], signupPassword)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acct.UserID)
			return nil
		},
	}
	signup.Flags().StringVar(&signupPassword, "password", "", "Account password")

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show the remote profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, done, err := newAPIClient()
			if err != nil {
				return err
			}
			defer done()

			p, err := api.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:           %s\n", p.FullName)
			fmt.Fprintf(out, "title:          %s\n", p.Title)
			fmt.Fprintf(out, "company:        %s\n", p.Company)
			fmt.Fprintf(out, "phone:          %s\n", p.Phone)
			fmt.Fprintf(out, "license:        %s\n", p.LicenseNumber)
			fmt.Fprintf(out, "certifications: %s\n", p.Certifications)
			fmt.Fprintf(out, "experience:     %s\n", p.Experience)
			if p.CurrentVessel.Name != "" {
				fmt.Fprintf(out, "vessel:         %s (IMO %s, %s)\n",
					p.CurrentVessel.Name, p.CurrentVessel.IMO, p.CurrentVessel.Type)
			}
			return nil
		},
	}

	update := accountUpdateCmd(newAPIClient)

	del := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete the backend account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, done, err := newAPIClient()
			if err != nil {
				return err
			}
			defer done()
			return api.DeleteAccount(cmd.Context(), args[0])
		},
	}

	root.AddCommand(login, signup, show, update, del)
	return root
}

func accountUpdateCmd(newAPIClient func() (*profileapi.Client, func(), error)) *cobra.Command {
	var (
		fullName string
		title    string
		company  string
		phone    string
		license  string
		certs    string
		exp      string
	)

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update remote profile fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, done, err := newAPIClient()
			if err != nil {
				return err
			}
			defer done()

			// Only flags the user actually set cross the wire.
			var upd profileapi.ProfileUpdate
			set := func(name string, target **string, value *string) {
				if cmd.Flags().Changed(name) {
					*target = value
				}
			}
			set("name", &upd.FullName, &fullName)
			set("title", &upd.Title, &title)
			set("company", &upd.Company, &company)
			set("phone", &upd.Phone, &phone)
			set("license", &upd.LicenseNumber, &license)
			set("certs", &upd.Certifications, &certs)
			set("experience", &upd.Experience, &exp)

			p, err := api.UpdateProfile(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", p.FullName)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&fullName, "name", "", "Full name")
	fs.StringVar(&title, "title", "", "Job title")
	fs.StringVar(&company, "company", "", "Company")
	fs.StringVar(&phone, "phone", "", "Phone number")
	fs.StringVar(&license, "license", "", "License number")
	fs.StringVar(&certs, "certs", "", "Certifications, comma separated")
	fs.StringVar(&exp, "experience", "", "Years of experience")
	return cmd
}
