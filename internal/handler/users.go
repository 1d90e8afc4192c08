package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/middleware"
    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/service"
)

// UserHandler bundles the account and movie list endpoints.
type UserHandler struct {
    Users *service.Users
}

func NewUserHandler(u *service.Users) *UserHandler { return &UserHandler{Users: u} }

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=6"`
    PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type googleReq struct {
    Email    string `json:"email" validate:"required,email"`
    GoogleID string `json:"googleId" validate:"required"`
    PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

// AuthResponse is returned by register, login and google-auth.
type AuthResponse struct {
    Success bool       `json:"success"`
    Msg     string     `json:"msg"`
    Token   string     `json:"token"`
    User    model.User `json:"user"`
}

// Register: create user and return a token immediately.
func (h *UserHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    res, err := h.Users.Register(c.Request().Context(), req.Email, req.Password, req.PhotoURL)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, AuthResponse{true, "User registered successfully.", res.Token, res.User})
}

func (h *UserHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    res, err := h.Users.Login(c.Request().Context(), req.Email, req.Password)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, AuthResponse{true, "Login successful.", res.Token, res.User})
}

// GoogleAuth signs in (creating on first use) an account asserted by the
// client's Google sign-in.
func (h *UserHandler) GoogleAuth(c echo.Context) error {
    var req googleReq
    if err := bindValid(c, &req); err != nil {
        return err
    }
    res, err := h.Users.GoogleAuth(c.Request().Context(), req.Email, req.GoogleID, req.PhotoURL)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, AuthResponse{true, "Login successful.", res.Token, res.User})
}

// Check reports whether an email is registered.
func (h *UserHandler) Check(c echo.Context) error {
    ok, err := h.Users.Check(c.Request().Context(), c.Param("email"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"exists": ok})
}

// Me returns the authenticated user with current lists.
func (h *UserHandler) Me(c echo.Context) error {
    u, ok := middleware.CurrentUser(c)
    if !ok {
        return service.ErrUnauthorized
    }
    u, err := h.Users.Me(c.Request().Context(), u.Email)
    if err != nil {
        return err
    }
    if u.Favorites == nil {
        u.Favorites = []int64{}
    }
    if u.Watchlist == nil {
        u.Watchlist = []int64{}
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// AddTo returns the handler adding :movieId to list.
func (h *UserHandler) AddTo(list model.MovieList) echo.HandlerFunc {
    return h.mutate(list, h.Users.AddMovie)
}

// RemoveFrom returns the handler removing :movieId from list.
func (h *UserHandler) RemoveFrom(list model.MovieList) echo.HandlerFunc {
    return h.mutate(list, h.Users.RemoveMovie)
}

type listOp func(ctx context.Context, email string, list model.MovieList, movieID int64) ([]int64, error)

func (h *UserHandler) mutate(list model.MovieList, op listOp) echo.HandlerFunc {
    return func(c echo.Context) error {
        u, ok := middleware.CurrentUser(c)
        if !ok {
            return service.ErrUnauthorized
        }
        id, err := service.ParseID(c.Param("movieId"))
        if err != nil {
            return err
        }
        ids, err := op(c.Request().Context(), u.Email, list, id)
        if err != nil {
            return err
        }
        return c.JSON(http.StatusOK, echo.Map{"success": true, string(list): ids})
    }
}
