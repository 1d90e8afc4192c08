// Command moviescli is a terminal front end for the movies API.
//
//	moviescli list popular -genre 18 -sort vote_average -desc -page 2
//	moviescli movie 550
//	moviescli login you@example.com secret
//	MOVIES_TOKEN=... moviescli fav add 550
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iliyamo/movies-api/internal/apiclient"
	"github.com/iliyamo/movies-api/internal/browse"
	"github.com/iliyamo/movies-api/internal/model"
)

const usage = `usage: moviescli [-api URL] [-token JWT] <command> [args]

commands:
  list <local|popular|upcoming|now-playing|trending|top-rated> [filters]
  movie <id>
  credits <id>
  actor <id>
  register <email> <password>
  login <email> <password>
  me
  fav add|rm <movieId>
  watch add|rm <movieId>
`

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "moviescli:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("moviescli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	api := fs.String("api", envOr("MOVIES_API", "http://localhost:8080"), "API base URL")
	token := fs.String("token", os.Getenv("MOVIES_TOKEN"), "bearer token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	c := apiclient.New(*api)
	if *token != "" {
		c.SetToken(*token)
	}

	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "list":
		return listCmd(ctx, c, rest, out)
	case "movie":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		m, err := c.Movie(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)  %.1f/10  %d min\n%s\n", m.Title, year(m.ReleaseDate), m.VoteAverage, m.Runtime, m.Overview)
		return nil
	case "credits":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		cr, err := c.Credits(ctx, id)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, m := range cr.Cast {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", m.ActorID, m.Name, m.Character)
		}
		return tw.Flush()
	case "actor":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		a, err := c.Actor(ctx, id)
		if err != nil {
			return err
		}
		movies, err := c.ActorMovies(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (born %s)\n", a.Name, a.Birthday)
		for _, m := range movies {
			fmt.Fprintf(out, "  %d  %s as %s\n", m.MovieID, m.Title, m.Character)
		}
		return nil
	case "register", "login":
		if len(rest) != 2 {
			return fmt.Errorf("%s needs <email> <password>", cmd)
		}
		auth := c.Login
		if cmd == "register" {
			auth = c.Register
		}
		res, err := auth(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\nexport MOVIES_TOKEN=%s\n", res.Msg, c.Token())
		return nil
	case "me":
		u, err := c.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\nfavorites: %v\nwatchlist: %v\n", u.Email, u.Favorites, u.Watchlist)
		return nil
	case "fav", "watch":
		list := model.Favorites
		if cmd == "watch" {
			list = model.Watchlist
		}
		return listMutation(ctx, c, list, rest, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listCmd(ctx context.Context, c *apiclient.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("list needs a source")
	}
	source := args[0]
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		f      browse.Filter
		sortBy = fs.String("sort", "", "title | release_date | vote_average")
		desc   = fs.Bool("desc", false, "descending order")
		page   = fs.Int("page", 1, "page of the filtered list")
		size   = fs.Int("size", 8, "page size")
	)
	fs.StringVar(&f.Title, "title", "", "title substring")
	fs.IntVar(&f.GenreID, "genre", 0, "genre id")
	fs.Float64Var(&f.MinRating, "min-rating", 0, "minimum vote average")
	fs.StringVar(&f.Year, "year", "", "release year")
	fs.StringVar(&f.Language, "lang", "", "original language")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	key, ok := browse.ParseSortKey(*sortBy)
	if !ok {
		return fmt.Errorf("unknown sort field %q", *sortBy)
	}

	var (
		src apiclient.MoviePage
		err error
	)
	if source == "local" {
		src, err = c.Movies(ctx, 1, 1000)
	} else {
		src, err = c.Listing(ctx, source, 1, 1000)
	}
	if err != nil {
		return err
	}

	p, err := browse.Page(browse.Apply(src.Results, f, browse.Sort{Key: key, Desc: *desc}), *page, *size)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, m := range p.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", m.ID, m.Title, year(m.ReleaseDate), m.VoteAverage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d/%d (%d movies)\n", p.Page, p.TotalPages, p.TotalResults)
	return nil
}

func listMutation(ctx context.Context, c *apiclient.Client, list model.MovieList, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%s needs add|rm <movieId>", list)
	}
	id, err := idArg(args[1:])
	if err != nil {
		return err
	}
	var ids []int64
	switch args[0] {
	case "add":
		ids, err = c.AddToList(ctx, list, id)
	case "rm":
		ids, err = c.RemoveFromList(ctx, list, id)
	default:
		return fmt.Errorf("unknown action %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %v\n", list, ids)
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one numeric id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "----"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
