package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/dto/file"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

// 10MB
const maxSize = int64(10 << 20)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteFiles, auth, fc.UploadFileHandler)
	r.GET(RouteFiles, auth, fc.GetFilesHandler)
	r.GET(RouteFilesReceived, auth, fc.GetReceivedFilesHandler)

	return fc
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size <= 0 || fh.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large or empty"})
		return
	}

	var opts domain.UploadOptions
	if v := c.PostForm("encrypted"); v != "" {
		if opts.Encrypted, err = strconv.ParseBool(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "encrypted must be a boolean"})
			return
		}
	}
	if ref := strings.TrimSpace(c.PostForm("encryption_key_ref")); ref != "" {
		opts.EncryptionKeyRef = &ref
	}

	f, err := fc.fileService.Upload(c.Request.Context(), actor, fh, opts)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to upload a file"},
		)
		fc.logger.Error("Upload() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFile(*f))
}

func (fc *FileController) GetFilesHandler(c *gin.Context) {
	fc.list(c, "FindOwnFiles()", fc.fileService.FindOwnFiles)
}

// GetReceivedFilesHandler lists files reachable through the caller's active shares.
func (fc *FileController) GetReceivedFilesHandler(c *gin.Context) {
	fc.list(c, "FindReceivedFiles()", fc.fileService.FindReceivedFiles)
}

func (fc *FileController) list(c *gin.Context, op string, find func(ctx context.Context, actor user.Actor, page int) (domain.Files, error)) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	files, err := find(c.Request.Context(), actor, page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get files"},
		)
		fc.logger.Error(op+" error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFiles(files),
	})
}
