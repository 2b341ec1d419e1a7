package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/extractor"
	"github.com/fadilmartias/resume-analyzer/internal/middleware"
	"github.com/fadilmartias/resume-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const uploadField = "resume"

type Extractor interface {
	Extract(ctx context.Context, u extractor.Upload) (extractor.Result, error)
}

type AnalysisService interface {
	Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalysisDTO, error)
	Get(ctx context.Context, id string) (*dto.AnalysisDTO, error)
}

type RoleService interface {
	SuggestRoles(ctx context.Context, id string) ([]dto.RoleSuggestionDTO, error)
}

type Config struct {
	UploadDir     string
	MaxUploadSize int64
	// AnalyzeLimit is the number of analyze calls allowed per client per
	// minute. 0 disables the limiter.
	AnalyzeLimit int
}

type AnalysisHandler struct {
	extractor Extractor
	analyses  AnalysisService
	roles     RoleService
	cfg       Config
}

func NewAnalysisHandler(ex Extractor, analyses AnalysisService, roles RoleService, cfg Config) *AnalysisHandler {
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.MaxUploadSize <= 0 || cfg.MaxUploadSize > extractor.MaxUploadBytes {
		cfg.MaxUploadSize = extractor.MaxUploadBytes
	}
	return &AnalysisHandler{extractor: ex, analyses: analyses, roles: roles, cfg: cfg}
}

func (h *AnalysisHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/upload", h.Upload)
	if h.cfg.AnalyzeLimit > 0 {
		api.Post("/analyze", middleware.RateLimiter(h.cfg.AnalyzeLimit, time.Minute), h.Analyze)
	} else {
		api.Post("/analyze", h.Analyze)
	}
	api.Get("/analysis/:id", h.GetAnalysis)
	if h.roles != nil {
		api.Get("/analysis/:id/roles", h.SuggestRoles)
	}
}

func (h *AnalysisHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "resume file is required",
			Details: util.NewFormError("missing file", map[string]string{uploadField: "required"}).Errors,
		}, err)
	}
	if file.Size > h.cfg.MaxUploadSize {
		return respondError(c, apperror.InvalidInput("file is too large"))
	}

	mediaType := detectMediaType(file)
	path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+extensionFor(mediaType))
	upload, err := extractor.NewUpload(path, filepath.Base(file.Filename), mediaType, file.Size)
	if err != nil {
		return respondError(c, err)
	}

	if err := c.SaveFile(file, path); err != nil {
		_ = os.Remove(path)
		middleware.Logger(c).Error("upload.save_failed", "error", err)
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "could not store the uploaded file",
		}, err)
	}

	res, err := h.extractor.Extract(c.UserContext(), upload)
	if err != nil {
		return respondError(c, err)
	}

	middleware.Logger(c).Info("upload.extracted", "method", res.Method, "chars", res.CharacterCount)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Text extracted",
		Data: dto.ExtractionDTO{
			Text:             res.Text,
			CharacterCount:   res.CharacterCount,
			ProcessingMethod: string(res.Method),
			Filename:         res.Filename,
			FileSize:         res.FileSize,
			Pages:            res.Pages,
		},
	})
}

func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperror.InvalidInput("request body must be JSON with a resumeText field"))
	}

	out, err := h.analyses.Analyze(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Analysis complete",
		Data:    out,
	})
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	out, err := h.analyses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get analysis",
		Data:    out,
	})
}

func (h *AnalysisHandler) SuggestRoles(c *fiber.Ctx) error {
	out, err := h.roles.SuggestRoles(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get role suggestions",
		Data:    out,
	})
}

// detectMediaType trusts the part's declared type unless it is missing or
// generic, in which case the first bytes are sniffed.
func detectMediaType(file *multipart.FileHeader) string {
	declared := strings.TrimSpace(file.Header.Get(fiber.HeaderContentType))
	if declared != "" && !strings.HasPrefix(declared, fiber.MIMEOctetStream) {
		return declared
	}

	f, err := file.Open()
	if err != nil {
		return declared
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return declared
	}
	return http.DetectContentType(head[:n])
}

func extensionFor(mediaType string) string {
	mediaType = strings.ToLower(mediaType)
	switch {
	case strings.HasPrefix(mediaType, extractor.MediaTypePDF):
		return ".pdf"
	case strings.HasPrefix(mediaType, extractor.MediaTypePNG):
		return ".png"
	case strings.HasPrefix(mediaType, extractor.MediaTypeJPEG):
		return ".jpg"
	default:
		return ""
	}
}
