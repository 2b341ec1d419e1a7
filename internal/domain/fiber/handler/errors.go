package handler

import (
	"errors"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"github.com/fadilmartias/resume-analyzer/internal/middleware"
	"github.com/fadilmartias/resume-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
)

const genericMessage = "Something went wrong on our side. Please try again."

var extractionMessages = map[apperror.Reason]string{
	apperror.ReasonInsufficientText:    "We could not read enough text from this image. Upload a sharper, well-lit photo or a PDF instead.",
	apperror.ReasonScannedPdfSuspected: "This PDF looks like a scanned image without a text layer. Convert it to a JPEG or PNG and upload it again so we can run OCR.",
	apperror.ReasonOcrEngineFailure:    "Text recognition failed for this image. Please try again or upload a PDF.",
	apperror.ReasonPdfParseTimeout:     "Reading this PDF took too long. Try exporting it again or upload a smaller file.",
	apperror.ReasonPdfParseError:       "This PDF could not be read. It may be damaged or password protected.",
}

// respondError maps err to a status and a user-facing message. Internal
// detail travels only in the dev fields ErrorResponse drops in production.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		middleware.Logger(c).Error("http.unhandled_error", "path", c.Path(), "error", err)
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: genericMessage,
		}, err)
	}

	code, message := fiber.StatusInternalServerError, genericMessage
	switch appErr.Kind {
	case apperror.KindInvalidInput:
		code, message = fiber.StatusBadRequest, appErr.Message
	case apperror.KindNotFound:
		code, message = fiber.StatusNotFound, appErr.Message
	case apperror.KindExtractionFailure:
		code = fiber.StatusUnprocessableEntity
		if m, ok := extractionMessages[appErr.Reason]; ok {
			message = m
		}
	case apperror.KindAnalysisFailed:
		message = appErr.Message
		if apperror.Is(err, apperror.KindInferenceUnavailable) {
			code = fiber.StatusBadGateway
		}
	case apperror.KindInferenceUnavailable:
		code, message = fiber.StatusServiceUnavailable, appErr.Message
	}

	details := fiber.Map{"code": appErr.Kind}
	if appErr.Reason != apperror.ReasonNone {
		details["reason"] = appErr.Reason
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    code,
		Message: message,
		Details: details,
	}, err)
}
