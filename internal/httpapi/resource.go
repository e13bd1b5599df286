package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/guia/internal/language"
	"horse.fit/guia/internal/repository"
	"horse.fit/guia/internal/service"
)

const (
	defaultPageSize = repository.DefaultLimit
	maxPageSize     = 200
)

// registerResource mounts the generic CRUD routes for one entity service.
// filterKeys whitelists the query parameters forwarded into the search
// scope's filter bag.
func registerResource[T any](g *echo.Group, name string, svc *service.Service[T], opts Options, filterKeys []string) {
	base := "/" + name

	g.GET(base, func(c echo.Context) error {
		lang, err := requestLanguage(c, opts)
		if err != nil {
			return err
		}
		req := pageRequest(c, filterKeys)
		page, err := svc.ListWithFallback(c.Request().Context(), req, lang, opts.DefaultLanguage)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, page)
	})

	g.GET(base+"/:id", func(c echo.Context) error {
		lang, err := requestLanguage(c, opts)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		shaped, err := svc.GetWithFallback(c.Request().Context(), id, lang, opts.DefaultLanguage)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, shaped)
	})

	g.POST(base, func(c echo.Context) error {
		lang, err := requestLanguage(c, opts)
		if err != nil {
			return err
		}
		payload, err := decodePayload(c)
		if err != nil {
			return err
		}
		shaped, err := svc.Create(c.Request().Context(), payload, lang)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusCreated, shaped)
	})

	g.PUT(base+"/:id", func(c echo.Context) error {
		lang, err := requestLanguage(c, opts)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		payload, err := decodePayload(c)
		if err != nil {
			return err
		}
		shaped, err := svc.Update(c.Request().Context(), id, payload, lang)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(http.StatusOK, shaped)
	})

	g.DELETE(base+"/:id", func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return mapServiceError(err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	if svc.Repository().SoftDeletes() {
		g.POST(base+"/:id/restore", func(c echo.Context) error {
			lang, err := requestLanguage(c, opts)
			if err != nil {
				return err
			}
			id, err := pathID(c)
			if err != nil {
				return err
			}
			shaped, err := svc.Restore(c.Request().Context(), id, lang)
			if err != nil {
				return mapServiceError(err)
			}
			return c.JSON(http.StatusOK, shaped)
		})
	}
}

// requestLanguage resolves ?lang=, defaulting to the platform language.
// Unsupported codes are rejected here, before they reach the core.
func requestLanguage(c echo.Context, opts Options) (string, error) {
	raw := c.QueryParam("lang")
	if strings.TrimSpace(raw) == "" {
		return language.NormalizeCode(opts.DefaultLanguage), nil
	}
	code := language.NormalizeCode(raw)
	if code == "" || !language.IsSupported(code) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported language: "+raw)
	}
	return code, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func decodePayload(c echo.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return payload, nil
}

func pageRequest(c echo.Context, filterKeys []string) repository.PageRequest {
	req := repository.PageRequest{
		Page:      queryInt(c, "page", repository.DefaultPage),
		Limit:     queryInt(c, "limit", defaultPageSize),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Search:    strings.TrimSpace(c.QueryParam("q")),
	}
	if req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}

	filters := make(map[string]any)
	for _, key := range filterKeys {
		raw := strings.TrimSpace(c.QueryParam(key))
		if raw == "" {
			continue
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters[key] = n
			continue
		}
		if b, err := strconv.ParseBool(raw); err == nil {
			filters[key] = b
			continue
		}
		filters[key] = raw
	}
	if len(filters) > 0 {
		req.Filters = filters
	}
	return req
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func mapServiceError(err error) error {
	if service.IsNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if service.IsValidation(err) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return err
}
