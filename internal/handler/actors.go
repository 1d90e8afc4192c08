package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/service"
)

// ActorHandler serves actor details and filmographies.
type ActorHandler struct {
    Catalog *service.Catalog
}

func NewActorHandler(cat *service.Catalog) *ActorHandler { return &ActorHandler{Catalog: cat} }

// ActorMovies is the body of GET /actors/:id/movies.
type ActorMovies struct {
    ActorID int64              `json:"actorId"`
    Movies  []model.ActorMovie `json:"movies"`
}

func (h *ActorHandler) Get(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    a, err := h.Catalog.Actor(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, a)
}

func (h *ActorHandler) Movies(c echo.Context) error {
    id, err := service.ParseID(c.Param("id"))
    if err != nil {
        return err
    }
    ms, err := h.Catalog.ActorMovies(c.Request().Context(), id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, ActorMovies{ActorID: id, Movies: ms})
}
