package melcloudhome

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const scrapeTimeout = 20 * time.Second

// MetricsCollector exposes the account's devices as Prometheus metrics.
// Fetches go through the client's profile cache, so scrapes inside the
// freshness window cost no vendor API calls.
type MetricsCollector struct {
	client *Client

	scrapeSuccess prometheus.Gauge
	lastSuccess   prometheus.Gauge
	connected     *prometheus.GaugeVec
	inError       *prometheus.GaugeVec
	rssi          *prometheus.GaugeVec
	setting       *prometheus.GaugeVec
}

func NewMetricsCollector(client *Client) *MetricsCollector {
	labels := []string{"device_id", "name", "category"}
	return &MetricsCollector{
		client: client,
		scrapeSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "melcloudhome_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "melcloudhome_last_success_timestamp_seconds",
			Help: "Last successful scrape timestamp (epoch seconds)",
		}),
		connected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "melcloudhome_device_connected",
			Help: "Device connectivity flag (1=connected)",
		}, labels),
		inError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "melcloudhome_device_in_error",
			Help: "Device error flag (1=in error)",
		}, labels),
		rssi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "melcloudhome_device_rssi",
			Help: "Device WiFi signal strength",
		}, labels),
		setting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "melcloudhome_device_setting",
			Help: "Numeric or boolean device setting value",
		}, append(append([]string(nil), labels...), "setting")),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.scrapeSuccess.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.connected.Describe(ch)
	c.inError.Describe(ch)
	c.rssi.Describe(ch)
	c.setting.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	devices, err := c.client.ListDevices(ctx)
	if err != nil {
		c.scrapeSuccess.Set(0)
		c.collectAll(ch)
		return
	}

	for _, device := range devices {
		labels := prometheus.Labels{
			"device_id": device.ID,
			"name":      device.GivenDisplayName,
			"category":  string(device.Category),
		}
		c.connected.With(labels).Set(boolGauge(device.IsConnected))
		c.inError.With(labels).Set(boolGauge(device.IsInError))
		c.rssi.With(labels).Set(float64(device.RSSI))

		for name, value := range ExtractState(device) {
			numeric, ok := settingGauge(value)
			if !ok {
				continue
			}
			c.setting.With(prometheus.Labels{
				"device_id": device.ID,
				"name":      device.GivenDisplayName,
				"category":  string(device.Category),
				"setting":   name,
			}).Set(numeric)
		}
	}

	c.scrapeSuccess.Set(1)
	c.lastSuccess.Set(float64(time.Now().Unix()))
	c.collectAll(ch)
}

func (c *MetricsCollector) collectAll(ch chan<- prometheus.Metric) {
	c.scrapeSuccess.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.connected.Collect(ch)
	c.inError.Collect(ch)
	c.rssi.Collect(ch)
	c.setting.Collect(ch)
}

// settingGauge maps the vendor's stringly-typed setting values onto gauge
// values. Booleans arrive as "True"/"False"; everything else must parse as
// a number to be exported.
func settingGauge(value string) (float64, bool) {
	if strings.EqualFold(value, "true") {
		return 1, true
	}
	if strings.EqualFold(value, "false") {
		return 0, true
	}
	numeric, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return numeric, true
}

func boolGauge(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
