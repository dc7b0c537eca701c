package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
)

// Collector periodically updates gauge metrics from database state
type Collector struct {
	db       *database.BunDB
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(db *database.BunDB, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 30 * time.Second // Default collection interval
	}

	return &Collector{
		db:       db,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic metrics collection
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect initial metrics immediately
	c.collectMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collectMetrics(ctx)
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

// collectMetrics updates all gauge metrics from current system state
func (c *Collector) collectMetrics(ctx context.Context) {
	if err := c.collectNetworkMetrics(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to collect network metrics")
	}
	if err := c.collectPartnerMetrics(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to collect partner metrics")
	}
}

func (c *Collector) collectNetworkMetrics(ctx context.Context) error {
	networks, err := c.db.Networks.List(ctx, database.NetworkFilter{})
	if err != nil {
		return err
	}

	NetworksTotal.Reset()
	for _, network := range networks {
		NetworksTotal.WithLabelValues(network.Organization, network.Status).Inc()
		if network.HealthScore != nil {
			HealthScoreValue.WithLabelValues(network.NetworkID, network.Organization).Set(*network.HealthScore)
		}
	}
	return nil
}

func (c *Collector) collectPartnerMetrics(ctx context.Context) error {
	partners, err := c.db.Partners.List(ctx, database.PartnerFilter{})
	if err != nil {
		return err
	}

	PartnersTotal.Reset()
	for _, partner := range partners {
		PartnersTotal.WithLabelValues(partner.Status).Inc()
	}
	return nil
}
