package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/stream"
	"github.com/devfikr/subpolish/internal/subtitle"
	"github.com/devfikr/subpolish/internal/utils"
)

// Download is the serialized response shape handed back to the transport:
// bytes plus the headers it needs.
type Download struct {
	Bytes       []byte
	ContentType string
	Filename    string
	UsesBOM     bool
}

type ConvertService interface {
	// Parse decodes an uploaded payload using the filename's extension as
	// the declared format.
	Parse(raw []byte, filename string) (*models.CaptionDocument, error)
	// Download serializes the whole document at once.
	Download(doc *models.CaptionDocument, format, originalName string) (*Download, error)
	// StreamDownload emits the document in bounded chunks; w is the live
	// response body.
	StreamDownload(ctx context.Context, doc *models.CaptionDocument, format string, w io.Writer) error
}

type convertService struct {
	log     *logrus.Logger
	emitter *stream.Emitter
}

func NewConvertService(log *logrus.Logger) ConvertService {
	return &convertService{
		log:     log,
		emitter: stream.New(stream.DefaultWindowSize, nil),
	}
}

func (s *convertService) Parse(raw []byte, filename string) (*models.CaptionDocument, error) {
	const op = "ConvertService.Parse"

	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return nil, utils.E(utils.CodeValidation, op, "filename has no extension", nil)
	}
	doc, err := subtitle.Parse(raw, ext)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"format":   strings.ToLower(ext),
		"captions": len(doc.Captions),
	}).Info("parsed upload")
	return doc, nil
}

func (s *convertService) Download(doc *models.CaptionDocument, format, originalName string) (*Download, error) {
	ct, err := subtitle.ContentType(format)
	if err != nil {
		return nil, err
	}
	b, err := subtitle.SerializeDocument(doc, format)
	if err != nil {
		return nil, err
	}
	return &Download{
		Bytes:       b,
		ContentType: ct,
		Filename:    subtitle.OutputFilename(originalName, format),
		UsesBOM:     subtitle.UsesBOM(format),
	}, nil
}

func (s *convertService) StreamDownload(ctx context.Context, doc *models.CaptionDocument, format string, w io.Writer) error {
	return s.emitter.Emit(ctx, doc.Displayable(), format, w)
}
