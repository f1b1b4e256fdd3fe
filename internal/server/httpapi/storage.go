package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/EdProwise/beawar-school-sub001/internal/server/objectstore"
)

type storageHandler struct {
	media MediaStore
	now   func() time.Time
}

type fileObject struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// upload stores the multipart file under the client supplied path.
func (h *storageHandler) upload(c echo.Context) error {
	key, err := objectstore.CleanKey(c.FormValue("path"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.put(c, key); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": fileObject{Path: key}})
}

// uploadFile stores the multipart file under a generated key and answers
// with its public URL.
func (h *storageHandler) uploadFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	key := objectstore.RandomKey(fh.Filename, h.now().UTC())
	if err := h.put(c, key); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": fileObject{Path: key, URL: publicURL(c, key)}})
}

func (h *storageHandler) put(c echo.Context, key string) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	return h.media.Put(c.Request().Context(), key, fh.Header.Get(echo.HeaderContentType), f)
}

func (h *storageHandler) remove(c echo.Context) error {
	var paths []string
	if err := json.NewDecoder(c.Request().Body).Decode(&paths); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array of paths")
	}
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key, err := objectstore.CleanKey(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		keys = append(keys, key)
	}

	removed, err := h.media.Remove(c.Request().Context(), keys)
	if err != nil {
		return err
	}
	out := make([]fileObject, 0, len(removed))
	for _, k := range removed {
		out = append(out, fileObject{Path: k})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// public redirects to a short-lived signed URL of the object.
func (h *storageHandler) public(c echo.Context) error {
	raw := c.Param("*")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	key, err := objectstore.CleanKey(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	target, err := h.media.PublicURL(c.Request().Context(), key)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, target)
}

// publicURL is the stable address of key on this server.
func publicURL(c echo.Context, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return c.Scheme() + "://" + c.Request().Host + "/api/storage/public/" + strings.Join(segs, "/")
}
