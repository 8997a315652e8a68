package file

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileCols = []string{
	"id", "owner_id", "bucket", "storage_key", "file_name", "original_name", "mime_type", "size_bytes",
	"storage_url", "encrypted", "encryption_key_ref", "created_at", "deleted_at",
}

func fileRow(id, owner uuid.UUID, name string) []any {
	return []any{
		id, owner, "uploads", "files/" + name, name, name, "text/plain", int64(42),
		"https://uploads/files/" + name, false, (*string)(nil), time.Now(), (*time.Time)(nil),
	}
}

func TestRepository_FetchReceivedFiles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	bob := uuid.New()
	alice := uuid.New()
	f1 := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(SelectReceivedFiles)).
		WithArgs(bob, 0).
		WillReturnRows(pgxmock.NewRows(fileCols).AddRow(fileRow(f1, alice, "report.txt")...))

	files, err := repo.FetchReceivedFiles(context.Background(), bob, 1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, f1, files[0].UUID)
	assert.Equal(t, alice, files[0].OwnerID)
	assert.Equal(t, uint64(42), files[0].SizeBytes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchFile_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(SelectFileByID)).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(fileCols))

	f, err := repo.FetchFile(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, f)
}
