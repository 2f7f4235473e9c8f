package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/bmc2go/internal/status"
)

func registerStatusEndpoints(rest *echo.Echo, store *status.Store) {
	rest.GET("/status/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, store.Snapshot(), indentationChar)
	})
	rest.GET("/status/history/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, store.History(), indentationChar)
	})
}
