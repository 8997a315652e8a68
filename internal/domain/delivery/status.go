package delivery

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type (
	Status  string
	Channel string

	// Record is the process-lifetime progress of one notification attempt for a share.
	Record struct {
		ID             uuid.UUID
		ShareID        uuid.UUID
		SenderID       uuid.UUID
		RecipientID    uuid.UUID
		RecipientEmail string
		Status         Status

		SentAt       *time.Time
		DeliveredAt  *time.Time
		ViewedAt     *time.Time
		DownloadedAt *time.Time
		FailedAt     *time.Time

		FailureReason        string
		RetryCount           int
		MaxRetries           int
		Channels             []Channel
		LastNotificationSent *time.Time
		CreatedAt            time.Time
	}
	Records []Record

	Analytics struct {
		From                time.Time
		To                  time.Time
		TotalSent           int
		Delivered           int
		Viewed              int
		Downloaded          int
		Failed              int
		RecentFailures      int
		AverageDeliveryTime time.Duration
		DeliveryRate        float64
	}
)

const (
	StatusPending    Status = "pending"
	StatusSent       Status = "sent"
	StatusDelivered  Status = "delivered"
	StatusViewed     Status = "viewed"
	StatusDownloaded Status = "downloaded"
	StatusFailed     Status = "failed"

	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"

	DefaultMaxRetries = 3
)

// allowed source states per target state
var transitions = map[Status][]Status{
	StatusSent:       {StatusPending},
	StatusDelivered:  {StatusPending, StatusSent},
	StatusViewed:     {StatusDelivered},
	StatusDownloaded: {StatusDelivered, StatusViewed},
	StatusFailed:     {StatusPending, StatusSent},
	StatusPending:    {StatusFailed},
}

// position on the forward path; failed is off the path
var forward = map[Status]int{
	StatusPending:    0,
	StatusSent:       1,
	StatusDelivered:  2,
	StatusViewed:     3,
	StatusDownloaded: 4,
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[to], from)
}

// Reached reports whether current already is at or past target on the forward path.
func Reached(current, target Status) bool {
	if current == target {
		return true
	}
	c, okC := forward[current]
	t, okT := forward[target]
	return okC && okT && target != StatusPending && c >= t
}

func ParseChannels(raw []string) []Channel {
	out := make([]Channel, 0, len(raw))
	for _, r := range raw {
		switch c := Channel(r); c {
		case ChannelEmail, ChannelPush, ChannelSMS:
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, ChannelPush)
	}
	return out
}

type TrackInput struct {
	ShareID        uuid.UUID
	SenderID       uuid.UUID
	RecipientID    uuid.UUID
	RecipientEmail string
	MaxRetries     int
	Channels       []Channel
}
