package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"stepstore/internal/stepstore"
	"stepstore/internal/storage"
)

type schemaRequest struct {
	Columns []stepstore.Column `json:"columns"`
	Force   bool               `json:"force"`
}

type saveRequest struct {
	Columns []stepstore.Column `json:"columns"`
	Rows    []stepstore.Row    `json:"rows"`
}

type queryResponse struct {
	Columns []string        `json:"columns"`
	Rows    []stepstore.Row `json:"rows"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Row       *int   `json:"row,omitempty"`
	Committed []int  `json:"committed,omitempty"`
}

func ownerOf(c echo.Context) stepstore.OwnerKey {
	return stepstore.OwnerKey{Transformation: c.Param("trans"), Step: c.Param("step")}
}

func decode(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}

func (s *Server) createSchema(c echo.Context) error {
	var req schemaRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err)
	}
	t := stepstore.Table{Name: c.Param("table"), Columns: req.Columns}
	if err := s.store.CreateSchema(c.Request().Context(), t, req.Force); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) save(c echo.Context) error {
	var req saveRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err)
	}
	t := stepstore.Table{Name: c.Param("table"), Columns: req.Columns}
	if err := s.store.Save(c.Request().Context(), t, ownerOf(c), req.Rows); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) query(c echo.Context) error {
	var cols []string
	for _, col := range strings.Split(c.QueryParam("columns"), ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	rows, err := s.store.Query(c.Request().Context(), c.Param("table"), ownerOf(c), cols)
	if err != nil {
		return fail(c, err)
	}
	got, err := rows.Collect()
	if err != nil {
		return fail(c, err)
	}
	if got == nil {
		got = []stepstore.Row{}
	}
	return c.JSON(http.StatusOK, queryResponse{Columns: rows.Columns(), Rows: got})
}

func (s *Server) delete(c echo.Context) error {
	if _, err := s.store.Delete(c.Request().Context(), c.Param("table"), ownerOf(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// fail writes err with the status its type maps to.
func fail(c echo.Context, err error) error {
	resp := errorResponse{Error: err.Error()}
	var ue *stepstore.UpsertError
	if errors.As(err, &ue) {
		row := ue.Row
		resp.Row = &row
		resp.Committed = ue.Committed
	}
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Printf("httpapi: %s %s failed id=%s: %v", c.Request().Method, c.Request().URL.Path,
			c.Response().Header().Get(echo.HeaderXRequestID), err)
	}
	return c.JSON(code, resp)
}

func statusFor(err error) int {
	var (
		ve *stepstore.ValueError
		se *stepstore.SchemaError
		ce *storage.ConnectionError
		ue *stepstore.UpsertError
	)
	switch {
	case errors.As(err, &ue):
		return http.StatusInternalServerError
	case errors.As(err, &ve), errors.As(err, &se):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
