package file

const (
	pageSize = 50

	fileColumns = `f.id, f.owner_id, f.bucket, f.storage_key, f.file_name, f.original_name, f.mime_type, f.size_bytes,
		f.storage_url, f.encrypted, f.encryption_key_ref, f.created_at, f.deleted_at`

	SelectFileByID = `
		SELECT ` + fileColumns + `
		FROM files f
		WHERE f.id = $1 AND f.deleted_at IS NULL
	`
	SelectOwnerFiles = `
		SELECT ` + fileColumns + `
		FROM files f
		WHERE f.owner_id = $1 AND f.deleted_at IS NULL
		ORDER BY f.created_at DESC
		LIMIT 50 OFFSET $2
	`
	SelectReceivedFiles = `
		SELECT DISTINCT ON (f.id) ` + fileColumns + `
		FROM files f
		JOIN shares s ON s.file_id = f.id
		WHERE s.recipient_id = $1
		  AND f.deleted_at IS NULL
		  AND NOT s.revoked
		  AND (s.expires_at IS NULL OR s.expires_at > now())
		  AND (s.max_access_count IS NULL OR s.access_count < s.max_access_count)
		ORDER BY f.id, s.created_at DESC
		LIMIT 50 OFFSET $2
	`
	InsertFile = `
		INSERT INTO files AS f (owner_id, bucket, storage_key, file_name, original_name, mime_type, size_bytes,
		                        storage_url, encrypted, encryption_key_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns
)
