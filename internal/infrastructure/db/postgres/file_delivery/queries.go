package file_delivery

const (
	pageSize = 50

	deliveryColumns = `id, file_id, share_id, sender_id, recipient_id, status, delivery_attempts, failure_reason,
		last_retry_at, expires_at, delivered_at, created_at, updated_at`

	InsertFileDelivery = `
		INSERT INTO file_deliveries (file_id, share_id, sender_id, recipient_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + deliveryColumns
	SelectRetryable = `
		SELECT ` + deliveryColumns + `
		FROM file_deliveries
		WHERE recipient_id = $1
		  AND status IN ('PENDING', 'FAILED')
		  AND delivery_attempts < $2
		  AND expires_at > now()
		ORDER BY created_at
	`
	SelectByRecipient = `
		SELECT ` + deliveryColumns + `
		FROM file_deliveries
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT 50 OFFSET $2
	`
	SelectByShare = `
		SELECT ` + deliveryColumns + `
		FROM file_deliveries
		WHERE share_id = $1
		ORDER BY created_at
	`
	// claims an attempt; a concurrent scan that bumped the counter first makes this a no-op
	StartRetryByID = `
		UPDATE file_deliveries
		SET delivery_attempts = delivery_attempts + 1,
		    status = 'PENDING',
		    last_retry_at = now(),
		    updated_at = now()
		WHERE id = $1
		  AND delivery_attempts = $2
		  AND status IN ('PENDING', 'FAILED')
		RETURNING ` + deliveryColumns
	MarkDeliveredByID = `
		UPDATE file_deliveries
		SET status = 'DELIVERED',
		    delivered_at = COALESCE(delivered_at, now()),
		    failure_reason = '',
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + deliveryColumns
	MarkFailedByID = `
		UPDATE file_deliveries
		SET status = 'FAILED',
		    failure_reason = $2,
		    updated_at = now()
		WHERE id = $1 AND status <> 'DELIVERED'
		RETURNING ` + deliveryColumns
)
