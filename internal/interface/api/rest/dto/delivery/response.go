package delivery

import (
	"time"

	"github.com/google/uuid"
)

type (
	ActionResponse struct {
		Success    bool      `json:"success"`
		Message    string    `json:"message"`
		DeliveryID uuid.UUID `json:"deliveryId"`
	}

	Record struct {
		ID                   uuid.UUID  `json:"id"`
		ShareID              uuid.UUID  `json:"shareId"`
		RecipientID          uuid.UUID  `json:"recipientId"`
		RecipientEmail       string     `json:"recipientEmail"`
		Status               string     `json:"status"`
		SentAt               *time.Time `json:"sentAt,omitempty"`
		DeliveredAt          *time.Time `json:"deliveredAt,omitempty"`
		ViewedAt             *time.Time `json:"viewedAt,omitempty"`
		DownloadedAt         *time.Time `json:"downloadedAt,omitempty"`
		FailedAt             *time.Time `json:"failedAt,omitempty"`
		FailureReason        string     `json:"failureReason,omitempty"`
		RetryCount           int        `json:"retryCount"`
		MaxRetries           int        `json:"maxRetries"`
		Channels             []string   `json:"channels"`
		LastNotificationSent *time.Time `json:"lastNotificationSent,omitempty"`
		CreatedAt            time.Time  `json:"createdAt"`
	}

	FileDelivery struct {
		ID               uuid.UUID  `json:"id"`
		FileID           uuid.UUID  `json:"fileId"`
		ShareID          uuid.UUID  `json:"shareId"`
		SenderID         uuid.UUID  `json:"senderId"`
		RecipientID      uuid.UUID  `json:"recipientId"`
		Status           string     `json:"status"`
		DeliveryAttempts int        `json:"deliveryAttempts"`
		FailureReason    string     `json:"failureReason,omitempty"`
		LastRetryAt      *time.Time `json:"lastRetryAt,omitempty"`
		ExpiresAt        time.Time  `json:"expiresAt"`
		DeliveredAt      *time.Time `json:"deliveredAt,omitempty"`
		CreatedAt        time.Time  `json:"createdAt"`
	}

	StatusResponse struct {
		ShareID        uuid.UUID      `json:"shareId"`
		Deliveries     []Record       `json:"deliveries"`
		FileDeliveries []FileDelivery `json:"fileDeliveries"`
	}

	AnalyticsResponse struct {
		From                time.Time `json:"from"`
		To                  time.Time `json:"to"`
		TotalSent           int       `json:"totalSent"`
		Delivered           int       `json:"delivered"`
		Viewed              int       `json:"viewed"`
		Downloaded          int       `json:"downloaded"`
		Failed              int       `json:"failed"`
		RecentFailures      int       `json:"recentFailures"`
		AverageDeliveryTime float64   `json:"averageDeliveryTimeSeconds"`
		DeliveryRate        float64   `json:"deliveryRate"`
	}

	FileDeliveriesData struct {
		Data []FileDelivery `json:"data"`
	}
)
