package services

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/user"
)

const (
	maxBaseNameLen     = 100
	defaultContentType = "application/octet-stream"
)

var (
	windowsReserved = map[string]struct{}{
		"con": {}, "prn": {}, "aux": {}, "nul": {},
		"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
		"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
	}
	fileSafeRe    = regexp.MustCompile(`[^A-Za-z0-9\.\_\- ]+`)
	leadingDotsRe = regexp.MustCompile(`^\.+`)
)

type FileService struct {
	s3             ports.S3Client
	fileRepository domain.Repository
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
	now            func() time.Time
}

func NewFileService(
	s3 ports.S3Client,
	fileRepository domain.Repository,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.FileService {
	return &FileService{
		s3:             s3,
		fileRepository: fileRepository,
		logger:         logger,
		mCounter:       mCounter,
		now:            time.Now,
	}
}

func (fs *FileService) FindOwnFiles(ctx context.Context, actor user.Actor, page int) (domain.Files, error) {
	return fs.fileRepository.FetchOwnerFiles(ctx, actor.ID, page)
}

func (fs *FileService) FindReceivedFiles(ctx context.Context, actor user.Actor, page int) (domain.Files, error) {
	return fs.fileRepository.FetchReceivedFiles(ctx, actor.ID, page)
}

// Upload stores the bytes first and the metadata second; a failed insert
// leaves an orphan object, never a row pointing at nothing.
func (fs *FileService) Upload(
	ctx context.Context,
	actor user.Actor,
	in *multipart.FileHeader,
	opts domain.UploadOptions,
) (*domain.File, error) {
	f := fs.fillMetaData(in, actor.ID)
	f.Encrypted = opts.Encrypted
	f.EncryptionKeyRef = opts.EncryptionKeyRef

	body, err := in.Open()
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if err = fs.s3.PutObject(ctx, f.StorageKey, body, in.Size, f.MimeType); err != nil {
		return nil, err
	}

	out, err := fs.fileRepository.CreateFile(ctx, f)
	if err != nil {
		fs.logger.Warn("file metadata not saved, object orphaned",
			zap.String("storage_key", f.StorageKey), zap.Error(err))
		return nil, err
	}

	fs.mCounter.WithLabelValues("files_uploaded_total").Inc()

	return out, nil
}

func (fs *FileService) fillMetaData(in *multipart.FileHeader, ownerID uuid.UUID) *domain.File {
	f := &domain.File{
		OwnerID:      ownerID,
		OriginalName: in.Filename,
		FileName:     filepath.Base(sanitizeFileName(in.Filename)),
		MimeType:     in.Header.Get("Content-Type"),
		SizeBytes:    uint64(in.Size),
		Bucket:       fs.s3.GetBucket(),
	}
	if f.MimeType == "" {
		f.MimeType = defaultContentType
	}
	f.StorageKey = genSafeStorageKey(f, ownerID, fs.now())
	f.StorageURL = fs.s3.GetPublicURL(f.StorageKey)

	return f
}

// genSafeStorageKey: "files/YYYY/MM/DD/<ts-nanosec>/<owneruuid>/<filename>.ext"
func genSafeStorageKey(
	f *domain.File,
	ownerID uuid.UUID,
	now time.Time,
) string {
	clean := strings.TrimSpace(f.FileName)
	clean = strings.Map(func(r rune) rune {
		if r == '\x00' || r < 0x20 {
			return -1
		}
		return r
	}, clean)
	clean = leadingDotsRe.ReplaceAllString(clean, "")

	ext := strings.ToLower(filepath.Ext(clean))
	base := strings.TrimSuffix(clean, ext)

	if ext == "" {
		if exts, _ := mime.ExtensionsByType(f.MimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	base = fileSafeRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "- .")

	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}

	if base == "" {
		base = "file"
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "" {
		ext = ".bin"
	}

	safeFileName := base + ext

	now = now.UTC()
	return fmt.Sprintf(
		"files/%04d/%02d/%02d/%s/%s/%s",
		now.Year(), int(now.Month()), now.Day(),
		now.Format("20060102T150405.000000000Z"),
		strings.ReplaceAll(ownerID.String(), "-", ""),
		safeFileName,
	)
}

// sanitizeFileName make file name ASCII standard
func sanitizeFileName(original string) string {
	if original == "" {
		return "file"
	}

	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)

	if s == "." || s == ".." || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := strings.ToLower(path.Ext(s))
	base := strings.TrimSuffix(s, ext)

	// keep [a-z0-9]; runs of "-", "_", "." and spaces collapse to one "-"
	var b strings.Builder
	b.Grow(len(base))
	prevDash := false
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_':
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		case r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		default:
		}
	}
	base = strings.Trim(b.String(), "-")

	if base == "" {
		base = "file"
	}
	if _, bad := windowsReserved[base]; bad {
		base = "_" + base
	}

	for utf8.RuneCountInString(base)+len(ext) > maxBaseNameLen {
		_, size := utf8.DecodeLastRuneInString(base)
		if size <= 0 || size > len(base) {
			break
		}
		base = base[:len(base)-size]
	}

	return base + ext
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
