package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"motor_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid    = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid      = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errMotorIDInvalid = "invalid 'motor_id'; use a positive integer"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List status transitions
// @Description  Health status changes observed on live readings. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         events
// @Produce      json
// @Param        from      query   string  false  "Start of range"  example(2024-01-01)
// @Param        to        query   string  false  "End of range. Date-only treated as end of day."  example(2024-01-31)
// @Param        status    query   string  false  "Health status"  Enums(Normal,Warning,Critical)
// @Param        motor_id  query   int     false  "Motor id"
// @Success      200       {object}  map[string]interface{}  "count, events"
// @Failure      400       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /api/v1/events [get]
func (h *Handler) listStatusEvents(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		filter = service.EventFilter{Status: strings.TrimSpace(c.Query("status"))}
		err    error
	)
	if qs := c.Query("from"); qs != "" {
		filter.From, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// If only a date is provided, make 'to' end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		filter.To, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			filter.To = filter.To.Add(24*time.Hour - time.Second).UTC()
		}
	}
	if qs := c.Query("motor_id"); qs != "" {
		filter.MotorID, err = strconv.Atoi(qs)
		if err != nil || filter.MotorID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMotorIDInvalid})
			return
		}
	}

	events, err := h.services.StatusLog.List(ctx, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) || errors.Is(err, service.ErrUnknownStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorw("events_list_failed", "err", err, "from", filter.From, "to", filter.To, "status", filter.Status)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2024-01-01T10:00:00Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
