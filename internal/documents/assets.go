package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"agency-workers/internal/common/config"
	"agency-workers/internal/common/errors"
	commonhttp "agency-workers/internal/common/http"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

// OptionsFrom builds render options from the documents config section.
func OptionsFrom(cfg config.DocumentsConfig) Options {
	return Options{
		CurrencySymbol: cfg.CurrencySymbol,
		Issuer: models.Issuer{
			CompanyName:       cfg.Issuer.CompanyName,
			CompanyAddress:    cfg.Issuer.Address,
			CompanyEmail:      cfg.Issuer.Email,
			CompanyVatNo:      cfg.Issuer.VATNumber,
			CompanyCountry:    cfg.Issuer.Country,
			CompanyCity:       cfg.Issuer.City,
			CompanyPostalCode: cfg.Issuer.PostalCode,
			CompanyState:      cfg.Issuer.State,
		},
	}
}

// LogoLoader finds the header image: the creator's uploaded image when it
// can be fetched and decoded, otherwise the configured file.
type LogoLoader struct {
	client       *commonhttp.Client
	fallbackPath string
	log          logger.Logger
}

func NewLogoLoader(client *commonhttp.Client, fallbackPath string, log logger.Logger) *LogoLoader {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &LogoLoader{client: client, fallbackPath: fallbackPath, log: log}
}

// Load never fails; a document without a logo is still a valid document.
func (l *LogoLoader) Load(ctx context.Context, imgURL string) []byte {
	if l == nil {
		return nil
	}
	if imgURL != "" && l.client != nil {
		resp, err := l.client.DoJSON(ctx, http.MethodGet, imgURL, map[string]string{"Accept": "image/*"}, nil)
		switch {
		case err != nil:
			l.log.Warn("Logo fetch failed", map[string]interface{}{"url": imgURL, "error": err.Error()})
		case !resp.OK():
			l.log.Warn("Logo fetch failed", map[string]interface{}{"url": imgURL, "status": resp.Status})
		default:
			if _, ok := LogoType(resp.Body); ok {
				return resp.Body
			}
			l.log.Warn("Logo is not a supported image", map[string]interface{}{"url": imgURL})
		}
	}

	if l.fallbackPath == "" {
		return nil
	}
	data, err := os.ReadFile(l.fallbackPath)
	if err != nil {
		l.log.Warn("Fallback logo unreadable", map[string]interface{}{"path": l.fallbackPath, "error": err.Error()})
		return nil
	}
	return data
}

// WriteFile renders into dir/name through a temp file so readers never see
// a partial document. It returns the final path and size.
func WriteFile(dir, name string, render func(io.Writer) error) (string, int64, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, errors.NewDocumentWriteFailedError(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", 0, errors.NewDocumentWriteFailedError(path, err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return "", 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return "", 0, errors.NewDocumentWriteFailedError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, errors.NewDocumentWriteFailedError(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, errors.NewDocumentWriteFailedError(path, fmt.Errorf("rename: %w", err))
	}
	return path, info.Size(), nil
}
