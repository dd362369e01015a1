package service

import (
	"context"

	md "motor_dashboard"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/upstream"
)

type ZoneSource interface {
	Zones(ctx context.Context) ([]md.Zone, error)
}

// ZoneListController builds the zone overview page.
type ZoneListController struct {
	src ZoneSource
	log *logger.Logger
}

func NewZoneListController(src ZoneSource, log *logger.Logger) *ZoneListController {
	if log == nil {
		log = logger.Nop()
	}
	return &ZoneListController{src: src, log: log}
}

// Load fetches the zones once. A 401 turns into a redirect to the login page
// and nothing is rendered.
func (c *ZoneListController) Load(ctx context.Context) ZoneListView {
	zones, err := c.src.Zones(ctx)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			return ZoneListView{RedirectTo: LoginPath}
		}
		c.log.Errorw("upstream_fetch_failed", "endpoint", upstream.EndpointZones, "error", err)
		return ZoneListView{Error: ZoneLoadError}
	}

	cards := make([]ZoneCard, 0, len(zones))
	for _, z := range zones {
		counts := make([]StatusCount, 0, len(md.Statuses))
		for _, st := range md.Statuses {
			counts = append(counts, StatusCount{Status: st, Count: z.Count(st)})
		}
		cards = append(cards, ZoneCard{
			ID:          z.ID,
			Name:        z.Name,
			Location:    z.Location,
			TotalMotors: z.TotalMotors,
			Status:      z.OverallStatus,
			BadgeClass:  z.OverallStatus.BadgeClass(),
			Counts:      counts,
			Href:        ZoneHref(z.ID),
		})
	}
	return ZoneListView{Cards: cards}
}
