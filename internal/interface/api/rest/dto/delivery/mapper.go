package delivery

import (
	"github.com/google/uuid"

	"fileshare-api/internal/domain/delivery"
)

// ToDomainAction leaves action validation to the service; only id syntax is checked here.
func ToDomainAction(req ActionRequest) (delivery.ActionRequest, error) {
	out := delivery.ActionRequest{
		Action:         delivery.Action(req.Action),
		RecipientEmail: req.RecipientEmail,
		Channels:       req.Channels,
	}
	if req.DeliveryID != nil && *req.DeliveryID != "" {
		id, err := uuid.Parse(*req.DeliveryID)
		if err != nil {
			return out, err
		}
		out.DeliveryID = &id
	}
	if req.ShareID != nil && *req.ShareID != "" {
		id, err := uuid.Parse(*req.ShareID)
		if err != nil {
			return out, err
		}
		out.ShareID = &id
	}
	return out, nil
}

func ToActionResponse(r delivery.ActionResult) ActionResponse {
	return ActionResponse{Success: r.Success, Message: r.Message, DeliveryID: r.DeliveryID}
}

func ToResponseRecord(r delivery.Record) Record {
	channels := make([]string, len(r.Channels))
	for i, c := range r.Channels {
		channels[i] = string(c)
	}
	return Record{
		ID:                   r.ID,
		ShareID:              r.ShareID,
		RecipientID:          r.RecipientID,
		RecipientEmail:       r.RecipientEmail,
		Status:               string(r.Status),
		SentAt:               r.SentAt,
		DeliveredAt:          r.DeliveredAt,
		ViewedAt:             r.ViewedAt,
		DownloadedAt:         r.DownloadedAt,
		FailedAt:             r.FailedAt,
		FailureReason:        r.FailureReason,
		RetryCount:           r.RetryCount,
		MaxRetries:           r.MaxRetries,
		Channels:             channels,
		LastNotificationSent: r.LastNotificationSent,
		CreatedAt:            r.CreatedAt,
	}
}

func ToResponseFileDelivery(d delivery.FileDelivery) FileDelivery {
	return FileDelivery{
		ID:               d.UUID,
		FileID:           d.FileID,
		ShareID:          d.ShareID,
		SenderID:         d.SenderID,
		RecipientID:      d.RecipientID,
		Status:           string(d.Status),
		DeliveryAttempts: d.DeliveryAttempts,
		FailureReason:    d.FailureReason,
		LastRetryAt:      d.LastRetryAt,
		ExpiresAt:        d.ExpiresAt,
		DeliveredAt:      d.DeliveredAt,
		CreatedAt:        d.CreatedAt,
	}
}

func ToResponseFileDeliveries(ds delivery.FileDeliveries) []FileDelivery {
	out := make([]FileDelivery, len(ds))
	for i, d := range ds {
		out[i] = ToResponseFileDelivery(*d)
	}
	return out
}

func ToStatusResponse(st delivery.ShareStatus) StatusResponse {
	out := StatusResponse{
		ShareID:        st.ShareID,
		Deliveries:     make([]Record, len(st.Records)),
		FileDeliveries: ToResponseFileDeliveries(st.Deliveries),
	}
	for i, r := range st.Records {
		out.Deliveries[i] = ToResponseRecord(r)
	}
	return out
}

func ToAnalyticsResponse(a delivery.Analytics) AnalyticsResponse {
	return AnalyticsResponse{
		From:                a.From,
		To:                  a.To,
		TotalSent:           a.TotalSent,
		Delivered:           a.Delivered,
		Viewed:              a.Viewed,
		Downloaded:          a.Downloaded,
		Failed:              a.Failed,
		RecentFailures:      a.RecentFailures,
		AverageDeliveryTime: a.AverageDeliveryTime.Seconds(),
		DeliveryRate:        a.DeliveryRate,
	}
}
