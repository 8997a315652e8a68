package file

import (
	"fileshare-api/internal/domain/file"
)

func ToResponseFile(f file.File) File {
	return File{
		UUID:         f.UUID,
		OwnerID:      f.OwnerID,
		FileName:     f.FileName,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		StorageURL:   f.StorageURL,
		Encrypted:    f.Encrypted,
		CreatedAt:    f.CreatedAt,
	}
}

func ToResponseFiles(fs file.Files) Files {
	out := make(Files, len(fs))
	for i, f := range fs {
		out[i] = ToResponseFile(*f)
	}

	return out
}
