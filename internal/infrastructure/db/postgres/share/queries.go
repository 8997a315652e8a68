package share

const (
	pageSize = 50

	shareColumns = `id, file_id, creator_id, share_type, recipient_id, recipient_email, group_id, permissions,
		password_hash, expires_at, max_access_count, access_count, view_count, download_count, last_accessed_at,
		revoked, revoked_at, created_at`

	InsertShare = `
		INSERT INTO shares (file_id, creator_id, share_type, recipient_id, recipient_email, group_id, permissions,
		                    password_hash, expires_at, max_access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + shareColumns
	// expired and exhausted shares stop holding the (file_id, recipient_id) slot
	RevokeInactiveShares = `
		UPDATE shares
		SET revoked = true,
		    revoked_at = now()
		WHERE file_id = $1
		  AND recipient_id = $2
		  AND NOT revoked
		  AND ((expires_at IS NOT NULL AND expires_at <= now())
		    OR (max_access_count IS NOT NULL AND access_count >= max_access_count))
	`
	SelectShareByID = `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE id = $1
	`
	RevokeShareByID = `
		UPDATE shares
		SET revoked = true,
		    revoked_at = COALESCE(revoked_at, now())
		WHERE id = $1
		RETURNING ` + shareColumns
	// the WHERE clause is the access gate; a miss means the share is inactive
	RecordShareAccess = `
		UPDATE shares
		SET access_count = access_count + 1,
		    view_count = view_count + CASE WHEN $2::text = 'view' THEN 1 ELSE 0 END,
		    download_count = download_count + CASE WHEN $2::text = 'download' THEN 1 ELSE 0 END,
		    last_accessed_at = now()
		WHERE id = $1
		  AND NOT revoked
		  AND (expires_at IS NULL OR expires_at > now())
		  AND (max_access_count IS NULL OR access_count < max_access_count)
		RETURNING ` + shareColumns
	SelectReceivedShares = `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE recipient_id = $1 AND NOT revoked
		ORDER BY created_at DESC
		LIMIT 50 OFFSET $2
	`
	SelectSentShares = `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT 50 OFFSET $2
	`
)
