package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts story subsystem events for Prometheus
type Collector struct {
	registry       *prometheus.Registry
	storiesCreated prometheus.Counter
	storyViews     prometheus.Counter
	storiesDeleted prometheus.Counter
	gigsCreated    prometheus.Counter
}

// NewCollector creates a Collector with its own registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		storiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigmarket_stories_created_total",
			Help: "Total number of stories created",
		}),
		storyViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigmarket_story_views_total",
			Help: "Total number of story view marks recorded",
		}),
		storiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigmarket_stories_deleted_total",
			Help: "Total number of stories deleted by their authors",
		}),
		gigsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigmarket_gigs_created_total",
			Help: "Total number of gigs created",
		}),
	}
	reg.MustRegister(c.storiesCreated, c.storyViews, c.storiesDeleted, c.gigsCreated)
	return c
}

func (c *Collector) StoryCreated() { c.storiesCreated.Inc() }
func (c *Collector) StoryViewed()  { c.storyViews.Inc() }
func (c *Collector) StoryDeleted() { c.storiesDeleted.Inc() }
func (c *Collector) GigCreated()   { c.gigsCreated.Inc() }

// Handler returns the HTTP handler serving the /metrics endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
