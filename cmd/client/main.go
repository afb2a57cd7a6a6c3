package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homestay/homestay-client/internal/app"
	"github.com/homestay/homestay-client/internal/config"
	"github.com/homestay/homestay-client/internal/domain/auth"
	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/pkg/i18n"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

const usage = `usage: client <command> [flags]

commands:
  login          -email -password
  logout
  me
  listings       [-kind home|experience] [-location] [-guests] [-page] [-mine]
  bookings       [-kind home|experience] [-host] [-page]
  favorites      [-kind home|experience] [-toggle <listing id>] [-page]
  notifications  [-page] [-read-all]
  draft          show|step|set|locate|photo|next|back|submit|discard [-kind home|experience]
`

type command func(ctx context.Context, a *app.App, args []string) error

var commands = map[string]command{
	"login":         runLogin,
	"logout":        runLogout,
	"me":            runMe,
	"listings":      runListings,
	"bookings":      runBookings,
	"favorites":     runFavorites,
	"notifications": runNotifications,
	"draft":         runDraft,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start client")
	}
	defer a.Close()

	err = run(ctx, a, os.Args[2:])
	if serr := a.SaveSession(ctx); serr != nil {
		log.Warn().Err(serr).Msg("Failed to save session")
	}
	if err != nil {
		fail(err, cfg.Language)
	}
}

// fail prints a localized error, plus field messages for validation errors.
func fail(err error, lang string) {
	log.Debug().Err(err).Msg("Command failed")
	fmt.Fprintln(os.Stderr, i18n.Message(err, lang))

	var verr *validator.Error
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f, verr.Fields[f])
		}
	}
	os.Exit(1)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("HOMESTAY_PASSWORD"), "account password")
	_ = fs.Parse(args)

	u, err := a.Auth.Login(ctx, auth.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func runLogout(ctx context.Context, a *app.App, _ []string) error {
	if err := a.Auth.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("Server logout failed")
	}
	fmt.Println("Signed out")
	return nil
}

func runMe(ctx context.Context, a *app.App, _ []string) error {
	u, err := a.Users.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(u)
}

func runListings(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("listings", flag.ExitOnError)
	kind := fs.String("kind", string(listing.KindHome), "home or experience")
	location := fs.String("location", "", "location filter")
	guests := fs.Int("guests", 0, "guest count")
	page := fs.Int("page", 1, "page number")
	mine := fs.Bool("mine", false, "list the signed-in host's own listings")
	_ = fs.Parse(args)

	switch listing.Kind(*kind) {
	case listing.KindHome:
		if *mine {
			return printSnapshot(a.Listings.ListMyHomes(ctx, *page))
		}
		if _, err := a.Listings.SearchHomes(ctx, listing.HomeFilter{Location: *location, Guests: *guests}); err != nil {
			return err
		}
		if *page > 1 {
			if err := a.Listings.Homes.Fetch(ctx, *page); err != nil {
				return err
			}
		}
		return printJSON(a.Listings.Homes.Snapshot())
	case listing.KindExperience:
		if *mine {
			return printSnapshot(a.Listings.ListMyExperiences(ctx, *page))
		}
		if _, err := a.Listings.SearchExperiences(ctx, listing.ExperienceFilter{Location: *location, Participants: *guests}); err != nil {
			return err
		}
		if *page > 1 {
			if err := a.Listings.Experiences.Fetch(ctx, *page); err != nil {
				return err
			}
		}
		return printJSON(a.Listings.Experiences.Snapshot())
	}
	return fmt.Errorf("%w: %s", listing.ErrInvalidFilter, *kind)
}

func runBookings(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("bookings", flag.ExitOnError)
	kind := fs.String("kind", string(listing.KindHome), "home or experience")
	host := fs.Bool("host", false, "list bookings of the signed-in host's listings")
	page := fs.Int("page", 1, "page number")
	_ = fs.Parse(args)

	switch {
	case listing.Kind(*kind) == listing.KindExperience && *host:
		return printSnapshot(a.Bookings.ListHostExperienceBookings(ctx, *page))
	case listing.Kind(*kind) == listing.KindExperience:
		return printSnapshot(a.Bookings.ListMyExperienceBookings(ctx, *page))
	case *host:
		return printSnapshot(a.Bookings.ListHostHomeBookings(ctx, *page))
	default:
		return printSnapshot(a.Bookings.ListMyHomeBookings(ctx, *page))
	}
}

func runFavorites(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("favorites", flag.ExitOnError)
	kind := fs.String("kind", "", "home or experience")
	toggle := fs.String("toggle", "", "save or unsave this listing")
	page := fs.Int("page", 1, "page number")
	_ = fs.Parse(args)

	if *toggle != "" {
		id, err := uuid.Parse(*toggle)
		if err != nil {
			return err
		}
		k := listing.Kind(*kind)
		if k == "" {
			k = listing.KindHome
		}
		saved, err := a.Favorites.Toggle(ctx, k, id)
		if err != nil {
			return err
		}
		fmt.Printf("Saved: %t\n", saved)
		return nil
	}
	return printSnapshot(a.Favorites.List(ctx, listing.Kind(*kind), *page))
}

func runNotifications(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	readAll := fs.Bool("read-all", false, "mark every notification read")
	_ = fs.Parse(args)

	if *readAll {
		if err := a.Notifications.MarkAllRead(ctx); err != nil {
			return err
		}
	}
	unread, err := a.Notifications.UnreadCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d unread\n", unread)
	return printSnapshot(a.Notifications.List(ctx, *page))
}

func runDraft(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	action := args[0]
	fs := flag.NewFlagSet("draft "+action, flag.ExitOnError)
	kind := fs.String("kind", string(listing.KindHome), "home or experience")
	_ = fs.Parse(args[1:])
	rest := fs.Args()

	w, err := a.Wizard(ctx, listing.Kind(*kind))
	if err != nil {
		return err
	}

	switch action {
	case "show":
		return printJSON(w.Record())
	case "step":
		// step            current step
		// step <name>     jump to a step
		if len(rest) > 0 {
			if err := w.Goto(ctx, rest[0]); err != nil {
				return err
			}
		}
		fmt.Printf("Step %d/%d: %s\n", w.StepIndex()+1, len(w.Steps()), w.Step().Name)
		return nil
	case "set":
		// set <step> '<json patch>'
		if len(rest) != 2 {
			return errors.New("usage: draft set <step> '<json>'")
		}
		return w.Apply(ctx, rest[0], json.RawMessage(rest[1]))
	case "locate":
		if len(rest) != 2 {
			return errors.New("usage: draft locate <lat> <lon>")
		}
		lat, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return err
		}
		lon, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return err
		}
		loc, err := w.Locate(ctx, lat, lon)
		if err != nil {
			return err
		}
		return printJSON(loc)
	case "photo":
		if len(rest) != 1 {
			return errors.New("usage: draft photo <file>")
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return err
		}
		return w.AddPhoto(ctx, rest[0], data)
	case "next":
		return w.Next(ctx)
	case "back":
		return w.Back(ctx)
	case "submit":
		id, err := w.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Published listing %s\n", id)
		return nil
	case "discard":
		return w.Discard(ctx)
	}
	return fmt.Errorf("unknown draft action %q", action)
}

func printSnapshot[T any](snap T, err error) error {
	if err != nil {
		return err
	}
	return printJSON(snap)
}
