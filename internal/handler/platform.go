package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/service"
)

// PlatformHandler serves the platform catalog.  Mutations take multipart
// bodies so the icon file can travel with the fields.
type PlatformHandler struct {
	Platforms *service.PlatformService
}

func NewPlatformHandler(platforms *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{Platforms: platforms}
}

type platformPart struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Route     string    `json:"route"`
	Icon      string    `json:"icon,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPlatformPart(p model.Platform) platformPart {
	return platformPart{
		ID:        p.ID,
		Name:      p.Name,
		Route:     p.Route,
		Icon:      p.Icon,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Create registers a platform from a multipart form: name, route and the
// icon file.
func (h *PlatformHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	route := strings.TrimSpace(c.FormValue("route"))
	if name == "" || route == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/route required"})
	}

	icon, iconName, err := readUpload(c, "icon")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}
	if icon == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "icon required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Platforms.Create(ctx, name, route, icon, iconName); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Get returns one platform by id.
func (h *PlatformHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Platforms.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toPlatformPart(p))
}

// List returns the whole catalog.
func (h *PlatformHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	platforms, err := h.Platforms.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]platformPart, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, toPlatformPart(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Update merges multipart fields into a platform; omitted fields keep
// their current values and a missing icon part leaves the icon alone.
func (h *PlatformHandler) Update(c echo.Context) error {
	in := service.UpdatePlatformInput{
		Name:  strings.TrimSpace(c.FormValue("name")),
		Route: strings.TrimSpace(c.FormValue("route")),
	}
	if v := c.FormValue("is_active"); v != "" {
		active := v == "true" || v == "1"
		in.IsActive = &active
	}

	icon, iconName, err := readUpload(c, "icon")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Platforms.Update(ctx, c.Param("id"), in, icon, iconName); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Delete removes a platform and its icon file.
func (h *PlatformHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Platforms.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}
