package collectors

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

const namespace = "welc"

var (
	channelEnabledDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "channel", "enabled"),
		"Whether the event log channel is enabled (1) or disabled (0).",
		[]string{"system_name", "channel"}, nil,
	)
	channelMaxSizeDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "channel", "max_size_bytes"),
		"Maximum size of the event log channel in bytes.",
		[]string{"system_name", "channel"}, nil,
	)
	channelInfoDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "channel", "info"),
		"Static channel configuration (labels only).",
		[]string{"system_name", "channel", "log_mode", "log_type", "isolation", "owning_provider", "classic"}, nil,
	)
	providerChannelsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "provider", "channels"),
		"Number of channels a provider writes to.",
		[]string{"system_name", "provider"}, nil,
	)
	hostInfoDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "host", "info"),
		"Static host information (labels only).",
		[]string{"system_name", "hostname", "platform", "version", "kernel"}, nil,
	)
	collectSuccessDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "collect", "success"),
		"Whether the last collection succeeded.",
		[]string{"system_name"}, nil,
	)
	collectDurationDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "collect", "duration_seconds"),
		"Time the last collection took.",
		[]string{"system_name"}, nil,
	)
)

// Collector exports channel configuration as prometheus metrics. Each scrape
// reads the event-log facility through Reader. Provider metrics are only
// exported when provider patterns are set.
type Collector struct {
	mu         sync.Mutex
	reader     Reader
	systemName string
	channels   Filter
	providers  Filter
	timeout    time.Duration
	host       func() HostInfo
}

// NewCollector returns a collector scraping r. A zero timeout means 30s.
func NewCollector(r Reader, systemName string, channels, providers Filter, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Collector{
		reader:     r,
		systemName: systemName,
		channels:   channels,
		providers:  providers,
		timeout:    timeout,
		host:       GetHostInfo,
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- channelEnabledDesc
	ch <- channelMaxSizeDesc
	ch <- channelInfoDesc
	ch <- providerChannelsDesc
	ch <- hostInfoDesc
	ch <- collectSuccessDesc
	ch <- collectDurationDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hi := c.host()
	ch <- prometheus.MustNewConstMetric(hostInfoDesc, prometheus.GaugeValue, 1,
		c.systemName, hi.Hostname, hi.Platform, hi.PlatformVersion, hi.KernelVersion)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := CollectConfigured(ctx, c.reader, c.channels, c.providers)
	duration := time.Since(start).Seconds()

	success := 1.0
	if err != nil {
		log.Printf("Collection failed: %v", err)
		success = 0
	}
	c.export(ch, snapshot)

	ch <- prometheus.MustNewConstMetric(collectSuccessDesc, prometheus.GaugeValue, success, c.systemName)
	ch <- prometheus.MustNewConstMetric(collectDurationDesc, prometheus.GaugeValue, duration, c.systemName)
}

func (c *Collector) export(ch chan<- prometheus.Metric, snapshot welc.EventLogChannel) {
	for _, cfg := range snapshot.WinEventLog {
		ch <- prometheus.MustNewConstMetric(channelEnabledDesc, prometheus.GaugeValue, boolToFloat(cfg.IsEnabled),
			c.systemName, cfg.LogName)
		ch <- prometheus.MustNewConstMetric(channelMaxSizeDesc, prometheus.GaugeValue, float64(cfg.MaximumSizeInBytes),
			c.systemName, cfg.LogName)
		ch <- prometheus.MustNewConstMetric(channelInfoDesc, prometheus.GaugeValue, 1,
			c.systemName, cfg.LogName, cfg.LogMode, cfg.LogType, cfg.LogIsolation, cfg.OwningProviderName,
			strconv.FormatBool(cfg.IsClassicLog))
	}
	for _, md := range snapshot.Provider {
		ch <- prometheus.MustNewConstMetric(providerChannelsDesc, prometheus.GaugeValue, float64(len(md.LogLinks)),
			c.systemName, md.Name)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
