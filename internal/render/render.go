// Package render builds the dashboard HTML pages.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/chasefleming/elem-go"
	"github.com/chasefleming/elem-go/attrs"

	"motor_dashboard/internal/service"
)

//go:embed assets/style.css assets/device.js
var assets embed.FS

// Assets returns the static files served under /static.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	chartJSURL  = "https://cdn.jsdelivr.net/npm/chart.js"
	placeholder = "--"
)

func page(title string, scripts []elem.Node, content ...elem.Node) string {
	head := []elem.Node{
		elem.Meta(attrs.Props{attrs.Charset: "utf-8"}),
		elem.Meta(attrs.Props{attrs.Name: "viewport", attrs.Content: "width=device-width, initial-scale=1"}),
		elem.Title(attrs.Props{}, elem.Text(title)),
		elem.Link(attrs.Props{"rel": "stylesheet", attrs.Href: "/static/style.css"}),
	}
	head = append(head, scripts...)

	doc := elem.Html(attrs.Props{"lang": "en"},
		elem.Head(attrs.Props{}, head...),
		elem.Body(attrs.Props{},
			elem.Header(attrs.Props{},
				elem.A(attrs.Props{attrs.Href: "/zones"}, elem.Text("Motor Monitoring Dashboard")),
			),
			elem.Main(attrs.Props{}, content...),
		),
	)
	return doc.Render()
}

func badge(id, class, label string) elem.Node {
	props := attrs.Props{attrs.Class: class}
	if id != "" {
		props[attrs.ID] = id
	}
	return elem.Span(props, elem.Text(label))
}

func errorText(msg string) elem.Node {
	return elem.P(attrs.Props{attrs.Class: "error"}, elem.Text(msg))
}

// ZoneOverview renders the zone cards, or the error text when loading failed.
// Redirects are handled by the caller.
func ZoneOverview(v service.ZoneListView) string {
	var body elem.Node
	if v.Error != "" {
		body = errorText(v.Error)
	} else {
		cards := make([]elem.Node, 0, len(v.Cards))
		for _, c := range v.Cards {
			cards = append(cards, zoneCard(c))
		}
		body = elem.Div(attrs.Props{attrs.Class: "card-grid"}, cards...)
	}

	return page("Zone Overview", nil,
		elem.H1(attrs.Props{}, elem.Text("Zone Overview")),
		elem.Div(attrs.Props{attrs.ID: "zone-container"}, body),
	)
}

func zoneCard(c service.ZoneCard) elem.Node {
	counts := make([]elem.Node, 0, 2*len(c.Counts))
	for i, sc := range c.Counts {
		if i > 0 {
			counts = append(counts, elem.Text(" | "))
		}
		counts = append(counts, elem.Span(attrs.Props{attrs.Class: string(sc.Status)},
			elem.Text(fmt.Sprintf("%d %s", sc.Count, sc.Status))))
	}

	return elem.A(attrs.Props{attrs.Href: c.Href, attrs.Class: "zone-card", "data-zone-id": strconv.Itoa(c.ID)},
		elem.H3(attrs.Props{}, elem.Text(c.Name)),
		elem.P(attrs.Props{}, elem.Text("Location: "+c.Location)),
		elem.Hr(attrs.Props{}),
		elem.P(attrs.Props{}, elem.Text(fmt.Sprintf("Total Motors: %d", c.TotalMotors))),
		elem.P(attrs.Props{},
			elem.Text("Overall Health: "),
			badge("", c.BadgeClass, string(c.Status)),
		),
		elem.P(attrs.Props{attrs.Class: "counts"}, counts...),
	)
}

// MotorList renders the motors of one zone.
func MotorList(v service.MotorListView) string {
	var body elem.Node
	switch {
	case v.Error != "":
		body = errorText(v.Error)
	case v.Message != "":
		body = elem.P(attrs.Props{}, elem.Text(v.Message))
	default:
		cards := make([]elem.Node, 0, len(v.Cards))
		for _, c := range v.Cards {
			cards = append(cards, motorCard(c))
		}
		body = elem.Div(attrs.Props{attrs.Class: "card-grid"}, cards...)
	}

	zone := strconv.Itoa(v.ZoneID)
	return page("Motors in Zone "+zone, nil,
		elem.H1(attrs.Props{},
			elem.Text("Motors in Zone "),
			elem.Span(attrs.Props{attrs.ID: "zone-id-display"}, elem.Text(zone)),
		),
		elem.Div(attrs.Props{attrs.ID: "motor-list-container"}, body),
	)
}

func motorCard(c service.MotorCard) elem.Node {
	return elem.A(attrs.Props{attrs.Href: c.Href, attrs.Class: "motor-card", "data-motor-id": strconv.Itoa(c.ID)},
		elem.H3(attrs.Props{},
			elem.Text(fmt.Sprintf("%s (ID: %d) ", c.Name, c.ID)),
			badge("", c.BadgeClass, string(c.Status)),
		),
		elem.P(attrs.Props{}, elem.Text("Type: "+c.Type)),
		elem.P(attrs.Props{}, elem.Text("Power: "+c.RatedPower)),
		elem.P(attrs.Props{}, elem.Text("Temp: "+c.Temperature)),
		elem.P(attrs.Props{}, elem.Text("Vib: "+c.Vibration)),
	)
}

// DeviceDetail renders the detail page. Live updates are applied in the
// browser by device.js.
func DeviceDetail(v service.DeviceView) string {
	spec := service.MotorSpecView{
		Name: placeholder, Type: placeholder, RatedPower: placeholder, InstallDate: placeholder,
	}
	if v.Spec != nil {
		spec = *v.Spec
	}
	reading := service.ReadingView{
		Timestamp: placeholder, Temperature: placeholder, Vibration: placeholder, Sound: placeholder,
		BadgeClass: "status-badge",
	}
	if v.Reading != nil {
		reading = *v.Reading
	}

	specPanel := []elem.Node{
		elem.H2(attrs.Props{}, elem.Text("Specifications")),
		field("Type", "motor-type", spec.Type),
		field("Rated Power (kW)", "rated-power", spec.RatedPower),
		field("Installed", "install-date", spec.InstallDate),
	}
	if v.DetailError != "" {
		specPanel = append(specPanel, errorText(v.DetailError))
	}

	readingPanel := elem.Div(attrs.Props{attrs.Class: "panel"},
		elem.H2(attrs.Props{},
			elem.Text("Latest Reading "),
			badge("health-status-badge", reading.BadgeClass, string(reading.Status)),
		),
		field("Time", "timestamp", reading.Timestamp),
		valueField("Temperature", "temp-value", reading.Temperature),
		valueField("Vibration", "vib-value", reading.Vibration),
		valueField("Sound", "sound-value", reading.Sound),
	)

	chartPanel := []elem.Node{
		elem.H2(attrs.Props{}, elem.Text("Temperature History")),
	}
	if v.ChartError != "" {
		chartPanel = append(chartPanel, errorText(v.ChartError))
	}
	if v.Chart != nil {
		data, _ := json.Marshal(v.Chart)
		chartPanel = append(chartPanel,
			elem.Raw(`<canvas id="temperature-chart"></canvas>`),
			elem.Script(attrs.Props{attrs.ID: "chart-data", attrs.Type: "application/json"}, elem.Raw(string(data))),
		)
	}

	scripts := []elem.Node{
		elem.Script(attrs.Props{attrs.Src: chartJSURL}),
		elem.Script(attrs.Props{attrs.Src: "/static/device.js", "defer": "true"}),
	}
	return page("Motor "+strconv.Itoa(v.MotorID), scripts,
		elem.Div(attrs.Props{attrs.ID: "device-detail", "data-motor-id": strconv.Itoa(v.MotorID)},
			elem.H1(attrs.Props{attrs.ID: "motor-name"}, elem.Text(spec.Name)),
			elem.Div(attrs.Props{attrs.Class: "detail-grid"},
				elem.Div(attrs.Props{},
					elem.Div(attrs.Props{attrs.Class: "panel"}, specPanel...),
					readingPanel,
				),
				elem.Div(attrs.Props{attrs.Class: "panel"}, chartPanel...),
			),
		),
	)
}

func field(label, id, value string) elem.Node {
	return elem.P(attrs.Props{},
		elem.Text(label+": "),
		elem.Span(attrs.Props{attrs.ID: id}, elem.Text(value)),
	)
}

func valueField(label, id, value string) elem.Node {
	return elem.P(attrs.Props{},
		elem.Text(label+": "),
		elem.Span(attrs.Props{attrs.ID: id, attrs.Class: "reading-value"}, elem.Text(value)),
	)
}
