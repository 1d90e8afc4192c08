package model

import "time"

// Image describes one backdrop or poster file.
type Image struct {
    FilePath    string  `json:"file_path" bson:"file_path"`
    AspectRatio float64 `json:"aspect_ratio" bson:"aspect_ratio"`
    Height      int     `json:"height" bson:"height"`
    Width       int     `json:"width" bson:"width"`
    VoteAverage float64 `json:"vote_average" bson:"vote_average"`
    VoteCount   int     `json:"vote_count" bson:"vote_count"`
}

// Images groups the artwork of one movie.
type Images struct {
    MovieID   int64   `json:"movieId" bson:"movieId"`
    Backdrops []Image `json:"backdrops" bson:"backdrops"`
    Posters   []Image `json:"posters" bson:"posters"`
}

// Review is keyed by the upstream review id.
type Review struct {
    MovieID   int64     `json:"movieId" bson:"movieId"`
    ReviewID  string    `json:"reviewId" bson:"reviewId"`
    Author    string    `json:"author" bson:"author"`
    Content   string    `json:"content" bson:"content"`
    URL       string    `json:"url,omitempty" bson:"url,omitempty"`
    CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
