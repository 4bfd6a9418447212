package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/config"
	"example.com/factory/services/fulfillment/internal/model"
)

// ElasticClient indexes audit events for operational search. Indexing is
// best effort; the database remains the system of record.
type ElasticClient struct {
	client  *elasticsearch.Client
	config  config.ElasticConfig
	enabled bool
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if cfg.URL == "" {
		return &ElasticClient{enabled: false}, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{client: client, config: cfg, enabled: true}, nil
}

// IndexAuditEvent indexes one audit event
func (c *ElasticClient) IndexAuditEvent(ctx context.Context, event *model.AuditEvent) error {
	if !c.enabled {
		return nil
	}

	doc := map[string]interface{}{
		"id":          event.ID.String(),
		"source_type": event.SourceType,
		"order_id":    event.OrderID.String(),
		"event_type":  event.EventType,
		"message":     event.Message,
		"created_at":  event.CreatedAt,
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, c.config.Index),
		DocumentID: event.ID.String(),
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to index audit event")
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Warn().
			Str("event_id", event.ID.String()).
			Str("status", res.Status()).
			Msg("Elasticsearch rejected audit event")
		return errors.Errorf("indexing audit event returned status %s", res.Status())
	}
	return nil
}
