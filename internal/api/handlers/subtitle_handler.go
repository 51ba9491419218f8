package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/services"
	"github.com/devfikr/subpolish/internal/subtitle"
	"github.com/devfikr/subpolish/internal/utils"
)

type SubtitleHandler struct {
	svc services.ConvertService
	log *logrus.Logger
}

func NewSubtitleHandler(svc services.ConvertService, log *logrus.Logger) *SubtitleHandler {
	return &SubtitleHandler{svc: svc, log: log}
}

// Parse handles the upload path: multipart file in, CaptionDocument out.
func (h *SubtitleHandler) Parse(c *gin.Context) {
	raw, filename, ok := h.readUpload(c, "SubtitleHandler.Parse")
	if !ok {
		return
	}
	doc, err := h.svc.Parse(raw, filename)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Convert parses an upload and streams it back in the target format as a
// chunked download.
func (h *SubtitleHandler) Convert(c *gin.Context) {
	const op = "SubtitleHandler.Convert"

	raw, filename, ok := h.readUpload(c, op)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.PostForm("targetFormat")))
	if format == "" {
		writeError(c, utils.E(utils.CodeValidation, op, "targetFormat is required", nil))
		return
	}
	ct, err := subtitle.ContentType(format)
	if err != nil {
		writeError(c, err)
		return
	}

	doc, err := h.svc.Parse(raw, filename)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", ct)
	c.Header("Content-Disposition", `attachment; filename="`+subtitle.OutputFilename(filename, format)+`"`)
	c.Status(http.StatusOK)

	// Headers are gone once streaming starts; an in-flight failure can only
	// abort the transfer, never append an error payload.
	if err := h.svc.StreamDownload(c.Request.Context(), doc, format, c.Writer); err != nil {
		h.log.WithFields(logrus.Fields{
			"format": format,
			"error":  err.Error(),
		}).Warn("stream aborted")
		c.Abort()
	}
}

// Formats lists the supported containers.
func (h *SubtitleHandler) Formats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": subtitle.Formats()})
}

func (h *SubtitleHandler) readUpload(c *gin.Context, op string) ([]byte, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "missing multipart field 'file'", err))
		return nil, "", false
	}
	if fh.Size <= 0 || fh.Size > subtitle.MaxUploadBytes {
		writeError(c, utils.E(utils.CodeValidation, op, "file exceeds 50MB limit", nil))
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return nil, "", false
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, subtitle.MaxUploadBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return nil, "", false
	}
	return raw, fh.Filename, true
}
