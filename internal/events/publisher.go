package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

// Publisher wraps the go-shared events publisher for storefront audit events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new storefront events publisher
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "storefront-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the products stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "storefront-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product, tenantID string, actor models.ActorContext, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductCreated, product, tenantID)
	p.applyActor(event, actor, clientIP, userAgent)
	event.ChangeType = "created"
	return p.publish(ctx, event)
}

// PublishProductUpdated publishes a product.updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product, oldProduct *models.Product, changedFields []string, tenantID string, actor models.ActorContext, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductUpdated, product, tenantID)
	p.applyActor(event, actor, clientIP, userAgent)
	event.ChangeType = "updated"
	event.ChangedFields = changedFields

	if oldProduct != nil {
		event.OldValue = productSnapshot(oldProduct)
	}
	event.NewValue = productSnapshot(product)

	return p.publish(ctx, event)
}

// PublishProductDeleted publishes a product.deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, product *models.Product, tenantID string, actor models.ActorContext, clientIP, userAgent string) error {
	event := p.buildProductEvent(events.ProductDeleted, product, tenantID)
	p.applyActor(event, actor, clientIP, userAgent)
	event.ChangeType = "deleted"
	return p.publish(ctx, event)
}

// PublishProductImported publishes a product.created event flagged as a bulk import
func (p *Publisher) PublishProductImported(ctx context.Context, product *models.Product, tenantID string, actor models.ActorContext) error {
	event := p.buildProductEvent(events.ProductCreated, product, tenantID)
	p.applyActor(event, actor, "", "")
	event.ChangeType = "imported"
	return p.publish(ctx, event)
}

// applyActor stamps actor identity onto an event
func (p *Publisher) applyActor(event *events.ProductEvent, actor models.ActorContext, clientIP, userAgent string) {
	event.ActorID = actor.ID
	event.ActorName = actor.Name
	event.ActorEmail = actor.Email
	event.ClientIP = clientIP
	event.UserAgent = userAgent
}

// productSnapshot captures the audit-relevant fields of a product
func productSnapshot(product *models.Product) map[string]interface{} {
	desc := ""
	if product.Description != nil {
		desc = *product.Description
	}
	var price float64
	if product.Price != nil {
		price = *product.Price
	}
	return map[string]interface{}{
		"name":             product.Name,
		"slug":             product.Slug,
		"description":      desc,
		"price":            price,
		"inStock":          product.InStock,
		"weeklyBestSeller": product.WeeklyBestSeller,
	}
}

// buildProductEvent creates a ProductEvent from a product model
func (p *Publisher) buildProductEvent(eventType string, product *models.Product, tenantID string) *events.ProductEvent {
	event := events.NewProductEvent(eventType, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = product.ID.String()
	event.ProductName = product.Name

	if product.Price != nil {
		event.Price = *product.Price
	}
	if product.CategoryID != nil {
		event.CategoryID = product.CategoryID.String()
	}

	return event
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the main flow
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish product event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType":   event.EventType,
				"productID":   event.ProductID,
				"productName": event.ProductName,
				"tenantID":    event.TenantID,
			}).Info("Product event published successfully")
		}
	}()

	return nil
}
