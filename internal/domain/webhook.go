package domain

import (
	"encoding/json"
	"time"
)

// Lifecycle and compliance topics the app reacts to
const (
	TopicAppInstalled         = "app/installed"
	TopicAppUninstalled       = "app/uninstalled"
	TopicCustomersDataRequest = "customers/data_request"
	TopicCustomersRedact      = "customers/redact"
	TopicShopRedact           = "shop/redact"
)

// IsComplianceTopic reports whether the topic is a GDPR webhook handled off the request path
func IsComplianceTopic(topic string) bool {
	switch topic {
	case TopicCustomersDataRequest, TopicCustomersRedact, TopicShopRedact:
		return true
	}
	return false
}

// WebhookEvent is a lifecycle event for one shop
type WebhookEvent struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Shop       string          `json:"shop"`
	ShopID     int64           `json:"shop_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Verified   bool            `json:"verified"`
	ReceivedAt time.Time       `json:"received_at"`
}

// CompliancePayload is the body shared by the GDPR webhooks
type CompliancePayload struct {
	ShopID          int64   `json:"shop_id"`
	ShopDomain      string  `json:"shop_domain"`
	OrdersRequested []int64 `json:"orders_requested"`
	Customer        struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	DataRequest struct {
		ID int64 `json:"id"`
	} `json:"data_request"`
}

// Job is a queued compliance webhook
type Job struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Domain     string          `json:"domain"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}
