package user

const (
	userColumns = `id, email, password_hash, role, name, created_at, updated_at, deleted_at`

	SelectUserByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	SelectUserByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`
	InsertUser = `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
)
