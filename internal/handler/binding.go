package handler

import (
    "errors"
    "fmt"
    "net/http"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    json "github.com/goccy/go-json"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/service"
)

// Validator adapts validator/v10 to echo.Validator.  Failures wrap
// service.ErrInvalidInput and name the offending fields.
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
    err := cv.v.Struct(i)
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
    }
    msgs := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        switch fe.Tag() {
        case "required":
            msgs = append(msgs, fe.Field()+" is required")
        case "email":
            msgs = append(msgs, fe.Field()+" must be a valid email")
        case "min":
            msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
        default:
            msgs = append(msgs, fe.Field()+" is invalid")
        }
    }
    return fmt.Errorf("%w: %s", service.ErrInvalidInput, strings.Join(msgs, "; "))
}

// bindValid binds the request body into dst and validates it.
func bindValid(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return fmt.Errorf("%w: invalid body", service.ErrInvalidInput)
    }
    return c.Validate(dst)
}

// JSONSerializer is an echo.JSONSerializer backed by goccy/go-json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i any, indent string) error {
    enc := json.NewEncoder(c.Response())
    if indent != "" {
        enc.SetIndent("", indent)
    }
    return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i any) error {
    err := json.NewDecoder(c.Request().Body).Decode(i)
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
    }
    return nil
}
