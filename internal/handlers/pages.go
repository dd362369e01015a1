package handlers

import (
	"net/http"
	"strconv"

	"motor_dashboard/internal/render"

	"github.com/gin-gonic/gin"
)

const contentTypeHTML = "text/html; charset=utf-8"

func (h *Handler) html(c *gin.Context, page string) {
	c.Data(http.StatusOK, contentTypeHTML, []byte(page))
}

// zonesPage renders the zone overview. A 401 from the API sends the
// browser to the login page.
func (h *Handler) zonesPage(c *gin.Context) {
	view := h.services.Zones.Load(c.Request.Context())
	if view.RedirectTo != "" {
		c.Redirect(http.StatusFound, view.RedirectTo)
		return
	}
	h.html(c, render.ZoneOverview(view))
}

func (h *Handler) motorsPage(c *gin.Context) {
	zoneID, err := strconv.Atoi(c.Param("id"))
	if err != nil || zoneID <= 0 {
		c.String(http.StatusNotFound, "unknown zone")
		return
	}
	h.html(c, render.MotorList(h.services.Motors.Load(c.Request.Context(), zoneID)))
}

// devicePage renders the detail page. Without a usable motor id nothing is
// shown; the controller has already logged the failure.
func (h *Handler) devicePage(c *gin.Context) {
	motorID, _ := strconv.Atoi(c.Param("id"))
	dev, err := h.services.Devices.Open(motorID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.html(c, render.DeviceDetail(dev.Load(c.Request.Context())))
}
