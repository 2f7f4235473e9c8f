package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/bmc2go/internal/status"
)

func registerSensorEndpoints(rest *echo.Echo, store *status.Store) {
	group := rest.Group("/sensor")

	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, store.Readings(), indentationChar)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		id := c.Param(urlParamId)
		data, exists := store.Reading(id)
		if !exists {
			return returnNotFound(c, id)
		}
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	})
}
