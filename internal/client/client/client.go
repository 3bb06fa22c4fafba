package client

import (
	"context"

	"github.com/dmitrijs2005/legaltrack/internal/client/models"
)

// SubscriptionKind selects what a subscription watches.
type SubscriptionKind string

const (
	SubscriptionCase    SubscriptionKind = "case"
	SubscriptionCompany SubscriptionKind = "company"
)

// Client is the transport-agnostic view of the monitoring backend.
type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error

	Subscriptions(ctx context.Context) (*models.SubscriptionsResponse, error)
	CaseDetail(ctx context.Context, id int) (*models.CaseDetail, error)
	CalendarEvents(ctx context.Context) ([]models.CalendarEvent, error)
	Notifications(ctx context.Context, page int) (*models.NotificationsPage, error)
	Delays(ctx context.Context) ([]models.DelayItem, error)
	SearchDelays(ctx context.Context, caseNumber string) ([]models.DelayItem, error)
	Tariff(ctx context.Context) (*models.Tariff, error)

	AddSubscription(ctx context.Context, kind SubscriptionKind, value string, sou bool) error
	DeleteSubscription(ctx context.Context, kind SubscriptionKind, id int) error
	UpdatePushUID(ctx context.Context, uid string) error
	Logout(ctx context.Context) error

	// Download fetches an arbitrary authenticated resource (case documents).
	Download(ctx context.Context, url string) ([]byte, string, error)
}
