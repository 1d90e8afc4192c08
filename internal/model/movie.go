// Package model holds the records persisted in the document store.  Field
// tags use the same names for json and bson so a stored document and an API
// response look alike.
package model

// Genre is an upstream genre id/name pair.
type Genre struct {
    ID   int    `json:"id" bson:"id"`
    Name string `json:"name" bson:"name"`
}

// ProductionCountry is an ISO 3166-1 code with its display name.
type ProductionCountry struct {
    ISO31661 string `json:"iso_3166_1" bson:"iso_3166_1"`
    Name     string `json:"name" bson:"name"`
}

// SpokenLanguage is an ISO 639-1 code with its display names.
type SpokenLanguage struct {
    ISO6391     string `json:"iso_639_1" bson:"iso_639_1"`
    EnglishName string `json:"english_name" bson:"english_name"`
    Name        string `json:"name" bson:"name"`
}

// Movie is keyed by the upstream id.  Listing routes store the summary
// fields only; the detail route fills in the rest.
type Movie struct {
    ID                  int64               `json:"id" bson:"id"`
    Title               string              `json:"title" bson:"title"`
    OriginalTitle       string              `json:"original_title,omitempty" bson:"original_title,omitempty"`
    Overview            string              `json:"overview" bson:"overview"`
    ReleaseDate         string              `json:"release_date" bson:"release_date"`
    PosterPath          string              `json:"poster_path" bson:"poster_path"`
    BackdropPath        string              `json:"backdrop_path,omitempty" bson:"backdrop_path,omitempty"`
    GenreIDs            []int               `json:"genre_ids" bson:"genre_ids"`
    Genres              []Genre             `json:"genres,omitempty" bson:"genres,omitempty"`
    Popularity          float64             `json:"popularity" bson:"popularity"`
    VoteAverage         float64             `json:"vote_average" bson:"vote_average"`
    VoteCount           int                 `json:"vote_count" bson:"vote_count"`
    Runtime             int                 `json:"runtime,omitempty" bson:"runtime,omitempty"`
    OriginalLanguage    string              `json:"original_language" bson:"original_language"`
    ProductionCountries []ProductionCountry `json:"production_countries,omitempty" bson:"production_countries,omitempty"`
    SpokenLanguages     []SpokenLanguage    `json:"spoken_languages,omitempty" bson:"spoken_languages,omitempty"`
    Status              string              `json:"status,omitempty" bson:"status,omitempty"`
    Tagline             string              `json:"tagline,omitempty" bson:"tagline,omitempty"`
    Video               bool                `json:"video" bson:"video"`
}

// MovieRef is the embedded movie summary used by recommendation and
// similar-movie records.
type MovieRef struct {
    MovieID     int64  `json:"movieId" bson:"movieId"`
    Title       string `json:"title" bson:"title"`
    Overview    string `json:"overview" bson:"overview"`
    PosterPath  string `json:"poster_path" bson:"poster_path"`
    ReleaseDate string `json:"release_date" bson:"release_date"`
}

// Recommendation is the per-movie recommendation list, one per movie.
type Recommendation struct {
    MovieID         int64      `json:"movieId" bson:"movieId"`
    Recommendations []MovieRef `json:"recommendations" bson:"recommendations"`
}

// SimilarMovie is the per-movie similar list, one per movie.
type SimilarMovie struct {
    MovieID       int64      `json:"movieId" bson:"movieId"`
    SimilarMovies []MovieRef `json:"similarMovies" bson:"similarMovies"`
}
