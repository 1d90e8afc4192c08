package service

import (
	"time"

	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/tmdb"
)

func movieFromSummary(s tmdb.MovieSummary) model.Movie {
	ids := s.GenreIDs
	if ids == nil {
		ids = []int{}
	}
	return model.Movie{
		ID:               s.ID,
		Title:            s.Title,
		OriginalTitle:    s.OriginalTitle,
		Overview:         s.Overview,
		ReleaseDate:      s.ReleaseDate,
		PosterPath:       s.PosterPath,
		BackdropPath:     s.BackdropPath,
		GenreIDs:         ids,
		Popularity:       s.Popularity,
		VoteAverage:      s.VoteAverage,
		VoteCount:        s.VoteCount,
		OriginalLanguage: s.OriginalLanguage,
		Video:            s.Video,
	}
}

func movieFromDetail(d *tmdb.MovieDetail) model.Movie {
	m := movieFromSummary(d.MovieSummary)
	m.Runtime = d.Runtime
	m.Status = d.Status
	m.Tagline = d.Tagline
	// The detail endpoint returns genre objects, not genre_ids.
	if len(m.GenreIDs) == 0 {
		for _, g := range d.Genres {
			m.GenreIDs = append(m.GenreIDs, g.ID)
		}
	}
	for _, g := range d.Genres {
		m.Genres = append(m.Genres, model.Genre{ID: g.ID, Name: g.Name})
	}
	for _, c := range d.ProductionCountries {
		m.ProductionCountries = append(m.ProductionCountries, model.ProductionCountry{ISO31661: c.ISO31661, Name: c.Name})
	}
	for _, l := range d.SpokenLanguages {
		m.SpokenLanguages = append(m.SpokenLanguages, model.SpokenLanguage{ISO6391: l.ISO6391, EnglishName: l.EnglishName, Name: l.Name})
	}
	return m
}

func creditFromUpstream(movieID int64, c *tmdb.Credits) model.Credit {
	out := model.Credit{
		MovieID: movieID,
		Cast:    make([]model.CastMember, 0, len(c.Cast)),
		Crew:    make([]model.CrewMember, 0, len(c.Crew)),
	}
	for _, m := range c.Cast {
		out.Cast = append(out.Cast, model.CastMember{ActorID: m.ID, Name: m.Name, Character: m.Character, ProfilePath: m.ProfilePath})
	}
	for _, m := range c.Crew {
		out.Crew = append(out.Crew, model.CrewMember{CrewID: m.ID, Name: m.Name, Job: m.Job, Department: m.Department})
	}
	return out
}

func refsFromPage(p *tmdb.MoviePage) []model.MovieRef {
	out := make([]model.MovieRef, 0, len(p.Results))
	for _, s := range p.Results {
		out = append(out, model.MovieRef{
			MovieID:     s.ID,
			Title:       s.Title,
			Overview:    s.Overview,
			PosterPath:  s.PosterPath,
			ReleaseDate: s.ReleaseDate,
		})
	}
	return out
}

func imagesFromUpstream(movieID int64, s *tmdb.ImageSet) model.Images {
	conv := func(in []tmdb.Image) []model.Image {
		out := make([]model.Image, 0, len(in))
		for _, i := range in {
			out = append(out, model.Image{
				FilePath: i.FilePath, AspectRatio: i.AspectRatio, Height: i.Height,
				Width: i.Width, VoteAverage: i.VoteAverage, VoteCount: i.VoteCount,
			})
		}
		return out
	}
	return model.Images{MovieID: movieID, Backdrops: conv(s.Backdrops), Posters: conv(s.Posters)}
}

func reviewFromUpstream(movieID int64, r tmdb.Review) model.Review {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return model.Review{
		MovieID:   movieID,
		ReviewID:  r.ID,
		Author:    r.Author,
		Content:   r.Content,
		URL:       r.URL,
		CreatedAt: created.UTC(),
	}
}

func actorFromPerson(p *tmdb.Person) model.Actor {
	return model.Actor{
		ActorID:     p.ID,
		Name:        p.Name,
		Biography:   p.Biography,
		Birthday:    p.Birthday,
		ProfilePath: p.ProfilePath,
		Popularity:  p.Popularity,
		Movies:      []model.ActorMovie{},
	}
}

func actorMovies(c *tmdb.PersonCredits) []model.ActorMovie {
	out := make([]model.ActorMovie, 0, len(c.Cast))
	for _, m := range c.Cast {
		out = append(out, model.ActorMovie{MovieID: m.ID, Title: m.Title, Character: m.Character})
	}
	return out
}
