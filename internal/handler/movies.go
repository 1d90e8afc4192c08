package handler

import (
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/paging"
    "github.com/iliyamo/movies-api/internal/service"
    "github.com/iliyamo/movies-api/internal/tmdb"
)

// MovieHandler serves the movie routes: local and upstream listings, the
// detail record and the per-movie records.
type MovieHandler struct {
    Catalog  *service.Catalog
    PageSize int // default limit for listings
}

func NewMovieHandler(cat *service.Catalog, pageSize int) *MovieHandler {
    return &MovieHandler{Catalog: cat, PageSize: pageSize}
}

// ReviewList is the body of GET /movies/:id/reviews.
type ReviewList struct {
    MovieID int64          `json:"movieId"`
    Results []model.Review `json:"results"`
}

// List pages through the movies stored locally.
func (h *MovieHandler) List(c echo.Context) error {
    req, err := paging.Parse(c.QueryParam("page"), c.QueryParam("limit"), h.PageSize)
    if err != nil {
        return err
    }
    page, err := h.Catalog.ListMovies(c.Request().Context(), req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, page)
}

// Upstream serves a window of one of the upstream listings named by :list.
func (h *MovieHandler) Upstream(c echo.Context) error {
    kind, ok := tmdb.ParseListKind(c.Param("list"))
    if !ok {
        return fmt.Errorf("%w: unknown listing %q", service.ErrNotFound, c.Param("list"))
    }
    req, err := paging.Parse(c.QueryParam("page"), c.QueryParam("limit"), h.PageSize)
    if err != nil {
        return err
    }
    page, err := h.Catalog.UpstreamListing(c.Request().Context(), kind, req)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, page)
}

func (h *MovieHandler) Genres(c echo.Context) error {
    gs, err := h.Catalog.Genres(c.Request().Context())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"genres": gs})
}

func (h *MovieHandler) Get(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    m, err := h.Catalog.Movie(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Credits(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    cr, err := h.Catalog.Credits(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, cr)
}

func (h *MovieHandler) Recommendations(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    r, err := h.Catalog.Recommendations(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, r)
}

func (h *MovieHandler) Similar(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    s, err := h.Catalog.Similar(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, s)
}

func (h *MovieHandler) Images(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    im, err := h.Catalog.Images(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, im)
}

// Reviews passes the upstream reviews through without storing them.
func (h *MovieHandler) Reviews(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    rs, err := h.Catalog.Reviews(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, ReviewList{MovieID: id, Results: rs})
}

func (h *MovieHandler) Review(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    r, err := h.Catalog.Review(c.Request().Context(), id, c.Param("reviewId"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, r)
}

// ImportReviews stores the upstream reviews of a movie.
func (h *MovieHandler) ImportReviews(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    res, err := h.Catalog.ImportReviews(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, res)
}
