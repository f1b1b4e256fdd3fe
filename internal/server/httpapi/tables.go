package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

type tableHandler struct {
	docs DocumentService
}

type listEnvelope struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

// list answers a bare array, or {data, count} when a count was asked for.
func (h *tableHandler) list(c echo.Context) error {
	req, err := parseListParams(c.QueryParams())
	if err != nil {
		return err
	}
	res, err := h.docs.List(c.Request().Context(), c.Param("table"), req)
	if err != nil {
		return err
	}

	if req.Head {
		return c.JSON(http.StatusOK, listEnvelope{Count: res.Count})
	}
	if req.Count {
		return c.JSON(http.StatusOK, listEnvelope{Data: res.Rows, Count: res.Count})
	}
	return c.JSON(http.StatusOK, res.Rows)
}

func (h *tableHandler) create(c echo.Context) error {
	body, err := bindObject(c)
	if err != nil {
		return err
	}
	doc, err := h.docs.Create(c.Request().Context(), c.Param("table"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *tableHandler) upsert(c echo.Context) error {
	var in struct {
		Data any `json:"data"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	out, err := h.docs.Upsert(c.Request().Context(), c.Param("table"), in.Data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *tableHandler) patch(c echo.Context) error {
	body, err := bindObject(c)
	if err != nil {
		return err
	}
	doc, err := h.docs.Patch(c.Request().Context(), c.Param("table"), c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// delete returns the removed document.
func (h *tableHandler) delete(c echo.Context) error {
	doc, err := h.docs.Delete(c.Request().Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *tableHandler) deleteMany(c echo.Context) error {
	filters, err := parseFilters(c.QueryParams())
	if err != nil {
		return err
	}
	n, err := h.docs.DeleteMany(c.Request().Context(), c.Param("table"), filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

func bindObject(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}
	return body, nil
}
