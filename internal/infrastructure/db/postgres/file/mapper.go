package file

import (
	domain "fileshare-api/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	var f = &domain.File{
		UUID:    model.UUID,
		OwnerID: model.OwnerID,

		Bucket:           model.Bucket,
		StorageKey:       model.StorageKey,
		FileName:         model.FileName,
		OriginalName:     model.OriginalName,
		MimeType:         model.MimeType,
		SizeBytes:        uint64(model.SizeBytes),
		StorageURL:       model.StorageURL,
		Encrypted:        model.Encrypted,
		EncryptionKeyRef: model.EncryptionKeyRef,

		CreatedAt: model.CreatedAt,
		DeletedAt: model.DeletedAt,
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}
