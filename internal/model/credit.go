package model

// CastMember is one cast entry embedded in a Credit.
type CastMember struct {
    ActorID     int64  `json:"actorId" bson:"actorId"`
    Name        string `json:"name" bson:"name"`
    Character   string `json:"character" bson:"character"`
    ProfilePath string `json:"profile_path" bson:"profile_path"`
}

// CrewMember is one crew entry embedded in a Credit.
type CrewMember struct {
    CrewID     int64  `json:"crewId" bson:"crewId"`
    Name       string `json:"name" bson:"name"`
    Job        string `json:"job" bson:"job"`
    Department string `json:"department" bson:"department"`
}

// Credit holds the cast and crew of one movie.
type Credit struct {
    MovieID int64        `json:"movieId" bson:"movieId"`
    Cast    []CastMember `json:"cast" bson:"cast"`
    Crew    []CrewMember `json:"crew" bson:"crew"`
}

// ActorMovie is one entry of an actor's filmography.
type ActorMovie struct {
    MovieID   int64  `json:"movieId" bson:"movieId"`
    Title     string `json:"title" bson:"title"`
    Character string `json:"character" bson:"character"`
}

// Actor is keyed by the upstream person id.  Movies is replaced wholesale
// each time the actor's filmography is fetched.
type Actor struct {
    ActorID     int64        `json:"actorId" bson:"actorId"`
    Name        string       `json:"name" bson:"name"`
    Biography   string       `json:"biography" bson:"biography"`
    Birthday    string       `json:"birthday" bson:"birthday"`
    ProfilePath string       `json:"profile_path" bson:"profile_path"`
    Character   string       `json:"character,omitempty" bson:"character,omitempty"`
    Popularity  float64      `json:"popularity,omitempty" bson:"popularity,omitempty"`
    Movies      []ActorMovie `json:"movies" bson:"movies"`
}
