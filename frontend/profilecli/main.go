// Command profilecli shows a user's reviews in the terminal and lets the
// logged-in user like, edit and delete them.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tunebox/songreview/frontend/reviewapi"
	"github.com/tunebox/songreview/frontend/reviewcard"
	"github.com/tunebox/songreview/frontend/tokenstore"
	"github.com/tunebox/songreview/internal/logger"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()

	userFlag := flag.String("user", "", "id of the user whose reviews to show (defaults to you)")
	loginFlag := flag.String("login", "", "log in with this email or username first")
	flag.Parse()

	logger.Init(logger.Config{
		ServiceName: "profilecli",
		Environment: getEnv("ENVIRONMENT", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", tokenstore.DefaultPath()+".log"),
		FileOnly:    true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := reviewapi.New(
		getEnv("REVIEW_API_URL", "http://localhost:8084"),
		getEnv("USER_API_URL", "http://localhost:8080"),
	)
	store := tokenstore.New(getEnv("TOKEN_FILE", tokenstore.DefaultPath()))
	in := bufio.NewScanner(os.Stdin)

	if *loginFlag != "" {
		if err := login(ctx, api, store, in, *loginFlag); err != nil {
			fmt.Fprintln(os.Stderr, "login failed:", err)
			os.Exit(1)
		}
	}

	viewer, _ := store.Load()
	profileID := *userFlag
	if profileID == "" {
		profileID = viewer.UserID
	}
	if profileID == "" {
		fmt.Fprintln(os.Stderr, "no user given: pass -user or log in with -login")
		os.Exit(2)
	}

	p := &profile{api: api, store: store, in: in, out: os.Stdout, viewerID: viewer.UserID}
	if err := p.load(ctx, profileID); err != nil {
		fmt.Fprintln(os.Stderr, "could not load reviews:", err)
		os.Exit(1)
	}
	p.run(ctx)
}

func login(ctx context.Context, api *reviewapi.Client, store *tokenstore.Store, in *bufio.Scanner, identifier string) error {
	fmt.Print("Password: ")
	if !in.Scan() {
		return io.ErrUnexpectedEOF
	}
	session, err := api.Login(ctx, identifier, in.Text())
	if err != nil {
		logger.Security(logger.EventLoginFailure, "Login failed", logger.Fields("identifier", identifier))
		return err
	}
	logger.Info(logger.EventLoginSuccess, "Logged in", logger.Fields("user_id", session.User.ID))
	return store.Save(tokenstore.Credentials{
		Token:    session.Token,
		UserID:   session.User.ID,
		Username: session.User.Username,
	})
}

// profile owns the card list; cards ask it to remove reviews.
type profile struct {
	api      *reviewapi.Client
	store    *tokenstore.Store
	in       *bufio.Scanner
	out      io.Writer
	viewerID string
	cards    []*reviewcard.Card
	ctx      context.Context
}

func (p *profile) load(ctx context.Context, userID string) error {
	reviews, err := p.api.ListUserReviews(ctx, userID)
	if err != nil {
		return err
	}
	p.ctx = ctx
	for _, c := range p.cards {
		c.Dispose()
	}
	p.cards = p.cards[:0]
	for i, r := range reviews {
		p.cards = append(p.cards, reviewcard.New(reviewcard.Config{
			Record:   r.Record(),
			Index:    i,
			ViewerID: p.viewerID,
			Remote:   p.api,
			Tokens:   p.store,
			Confirm:  reviewcard.ConfirmFunc(p.confirm),
			OnDelete: p.handleReviewDeletion,
		}))
	}
	return nil
}

func (p *profile) confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	if !p.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "y" || answer == "yes"
}

func (p *profile) handleReviewDeletion(reviewID string) {
	token, err := p.store.Token()
	if err != nil {
		fmt.Fprintln(p.out, "Error:", err)
		return
	}
	if err := p.api.DeleteReview(p.ctx, token, reviewID); err != nil {
		fmt.Fprintln(p.out, "Error:", err)
		return
	}
	logger.Info(logger.EventReviewDeleted, "Review deleted", logger.Fields("review_id", reviewID))
	for i, c := range p.cards {
		if c.Record().ID == reviewID {
			c.Dispose()
			p.cards = append(p.cards[:i], p.cards[i+1:]...)
			break
		}
	}
}

const help = "commands: like N | edit N | delete N | more N | list | quit"

func (p *profile) run(ctx context.Context) {
	p.render()
	fmt.Fprintln(p.out, help)
	for {
		fmt.Fprint(p.out, "> ")
		if !p.in.Scan() || ctx.Err() != nil {
			return
		}
		fields := strings.Fields(p.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "q" {
			return
		}
		if fields[0] == "list" {
			p.render()
			continue
		}

		card := p.cardAt(fields)
		if card == nil {
			fmt.Fprintln(p.out, help)
			continue
		}

		var err error
		switch fields[0] {
		case "like":
			err = card.ToggleLike(ctx)
		case "more":
			card.ToggleTextExpansion()
		case "edit":
			err = p.edit(ctx, card)
		case "delete":
			_, err = card.RequestDelete()
		default:
			fmt.Fprintln(p.out, help)
			continue
		}
		if err != nil {
			fmt.Fprintln(p.out, "Error:", err)
		}
		p.render()
	}
}

func (p *profile) cardAt(fields []string) *reviewcard.Card {
	if len(fields) != 2 {
		return nil
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(p.cards) {
		return nil
	}
	return p.cards[n-1]
}

func (p *profile) edit(ctx context.Context, card *reviewcard.Card) error {
	if err := card.EnterEdit(); err != nil {
		return err
	}
	for {
		d := card.View().Draft
		for _, f := range []struct {
			field   reviewcard.Field
			current string
		}{
			{reviewcard.FieldRating, strconv.Itoa(d.Rating)},
			{reviewcard.FieldTitle, d.Title},
			{reviewcard.FieldComment, d.Comment},
		} {
			fmt.Fprintf(p.out, "%s [%s]: ", f.field, f.current)
			if !p.in.Scan() {
				card.Cancel()
				return nil
			}
			if v := p.in.Text(); v != "" {
				if err := card.UpdateDraftField(f.field, v); err != nil {
					return err
				}
			}
		}

		err := card.Commit(ctx)
		var fe reviewcard.FieldErrors
		if !errors.As(err, &fe) {
			if err != nil {
				card.Cancel()
			}
			return err
		}
		for _, f := range []reviewcard.Field{reviewcard.FieldRating, reviewcard.FieldTitle, reviewcard.FieldComment} {
			if msg, ok := fe[f]; ok {
				fmt.Fprintln(p.out, "  "+msg)
			}
		}
		if !p.confirm("Try again?") {
			card.Cancel()
			return nil
		}
	}
}

// stars draws a rating, clamped to the 0..5 scale.
func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > reviewcard.MaxRating {
		rating = reviewcard.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", reviewcard.MaxRating-rating)
}

func (p *profile) render() {
	if len(p.cards) == 0 {
		fmt.Fprintln(p.out, "No reviews yet.")
		return
	}
	for i, c := range p.cards {
		v := c.View()
		heart := "♡"
		if v.HasLiked {
			heart = "♥"
		}
		fmt.Fprintf(p.out, "\n#%d  %s by %s (%s)  [%s]\n", i+1, v.SongName, v.Artist, v.Album, strings.Join(v.Genres, ", "))
		fmt.Fprintf(p.out, "    cover: %s\n", v.Thumbnail)
		fmt.Fprintf(p.out, "    %s  %s %s\n", stars(v.Rating), v.Title, v.EditedLabel)
		fmt.Fprintf(p.out, "    %s\n", v.Comment)
		if v.ExpandLabel != "" {
			fmt.Fprintf(p.out, "    (%s: more %d)\n", v.ExpandLabel, i+1)
		}
		fmt.Fprintf(p.out, "    %s %d   by %s, %s\n", heart, v.LikeCount, v.Author, v.Created)
		if v.CanEdit {
			fmt.Fprintln(p.out, "    [edit] [delete]")
		}
	}
	fmt.Fprintln(p.out)
}
