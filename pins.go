package atlas

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/atlas/pin"
)

func (a *App) handleGetPins(c echo.Context) error {
	pins, err := a.Store.LoadPins()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pin.Document{Pins: pins})
}

// handleSavePins replaces the whole pin collection. The body is checked
// record by record; any invalid record rejects the request and leaves the
// stored list untouched.
func (a *App) handleSavePins(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "could not read request body")
	}
	pins, err := pin.Decode(body)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, validationMessage(err))
	}
	if err := a.Store.SavePins(pins); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pin.Document{Pins: pins})
}

func validationMessage(err error) string {
	var verr *pin.ValidationError
	if errors.As(err, &verr) || errors.Is(err, pin.ErrMalformed) {
		return err.Error()
	}
	return "invalid request body"
}

type coverRequest struct {
	Category string   `json:"category"`
	Slug     string   `json:"slug"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

func (a *App) handleSaveCover(c echo.Context) error {
	var req coverRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	req.Category = strings.TrimSpace(req.Category)
	req.Slug = strings.TrimSpace(req.Slug)
	switch {
	case req.Category == "" || req.Slug == "":
		return jsonError(c, http.StatusBadRequest, "category and slug are required")
	case req.X == nil || req.Y == nil:
		return jsonError(c, http.StatusBadRequest, "x and y are required")
	}
	if _, err := a.Cache.Entry(req.Category, req.Slug); errors.Is(err, ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "entry not found")
	} else if err != nil {
		return err
	}
	p := ClampCover(CoverPosition{Category: req.Category, Slug: req.Slug, X: *req.X, Y: *req.Y})
	if err := a.Store.SaveCoverPosition(p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleEntries(c echo.Context) error {
	entries, err := a.Cache.Summaries()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}
