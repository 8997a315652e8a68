package file_delivery

import (
	"fileshare-api/internal/domain/delivery"
)

func fromDBModel(model *FileDelivery) *delivery.FileDelivery {
	var d = &delivery.FileDelivery{
		UUID:        model.UUID,
		FileID:      model.FileID,
		ShareID:     model.ShareID,
		SenderID:    model.SenderID,
		RecipientID: model.RecipientID,

		Status:           delivery.FileDeliveryStatus(model.Status),
		DeliveryAttempts: int(model.DeliveryAttempts),
		FailureReason:    model.FailureReason,

		LastRetryAt: model.LastRetryAt,
		ExpiresAt:   model.ExpiresAt,
		DeliveredAt: model.DeliveredAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	return d
}

func fromDBModels(models *FileDeliveries) delivery.FileDeliveries {
	ds := make(delivery.FileDeliveries, len(*models))
	for idx, d := range *models {
		ds[idx] = fromDBModel(d)
	}

	return ds
}
