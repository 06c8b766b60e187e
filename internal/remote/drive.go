package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// MaxContentBytes bounds the file content returned to a caller
const MaxContentBytes = 100 * 1024

const (
	truncationMarker = "\n\n[... content truncated at 100 KB ...]"
	metadataFields   = "id,name,mimeType,size,modifiedTime,webViewLink"
)

// Workspace document types and the text format each is exported as
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
}

var textMimeTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-yaml":     true,
	"application/csv":        true,
}

// FileMetadata describes a Drive file
type FileMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

// FileContent is the cached record for a Drive file. Content and ExportedAs
// are null for binary files.
type FileContent struct {
	Metadata   FileMetadata `json:"metadata"`
	Content    *string      `json:"content"`
	ExportedAs *string      `json:"exportedAs"`
	Truncated  bool         `json:"truncated"`
	Note       string       `json:"note"`
}

// ParseFileID extracts a Drive file id from a bare id, a /d/{id}/ URL or an
// ?id= URL. Errors wrap models.ErrInvalidInput.
func ParseFileID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: file_id cannot be empty", models.ErrInvalidInput)
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if _, after, ok := strings.Cut(input, "/d/"); ok {
			if id, _, _ := strings.Cut(after, "/"); validFileID(id) {
				return id, nil
			}
		}
		if _, after, ok := strings.Cut(input, "id="); ok {
			if id, _, _ := strings.Cut(after, "&"); validFileID(id) {
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: could not extract file ID from URL: %s", models.ErrInvalidInput, input)
	}

	if !validFileID(input) {
		return "", fmt.Errorf("%w: invalid file ID or URL: %s", models.ErrInvalidInput, input)
	}
	return input, nil
}

func validFileID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// TruncateContent cuts text to at most MaxContentBytes on a rune boundary and
// appends the truncation marker. It reports whether text was cut.
func TruncateContent(text string) (string, bool) {
	if len(text) <= MaxContentBytes {
		return text, false
	}
	return text[:cutPoint(text)] + truncationMarker, true
}

// cutPoint is the last rune boundary at or before MaxContentBytes
func cutPoint(text string) int {
	end := MaxContentBytes
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

func isTextMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || textMimeTypes[mimeType]
}

// readFile fetches metadata then exports or downloads text content
func (g *GoogleFetcher) readFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := g.drive.Files.Get(fileID).Fields(metadataFields).Context(ctx).Do()
	if err != nil {
		return nil, driveError(fileID, err)
	}

	result := FileContent{
		Metadata: FileMetadata{
			ID:           file.Id,
			Name:         file.Name,
			MimeType:     file.MimeType,
			Size:         file.Size,
			ModifiedTime: file.ModifiedTime,
			WebViewLink:  file.WebViewLink,
		},
	}

	var text string
	switch exportAs, isWorkspace := exportFormats[file.MimeType]; {
	case isWorkspace:
		g.logger.Info("Exporting drive file", zap.String("file_id", fileID), zap.String("mime_type", exportAs))
		resp, err := g.drive.Files.Export(fileID, exportAs).Context(ctx).Download()
		if err != nil {
			return nil, driveError(fileID, fmt.Errorf("export: %w", err))
		}
		if text, err = readText(resp.Body); err != nil {
			return nil, err
		}
		result.ExportedAs = &exportAs
	case isTextMime(file.MimeType):
		g.logger.Info("Downloading drive file", zap.String("file_id", fileID))
		resp, err := g.drive.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, driveError(fileID, fmt.Errorf("download: %w", err))
		}
		if text, err = readText(resp.Body); err != nil {
			return nil, err
		}
	default:
		result.Note = fmt.Sprintf("Binary file (%s); content not fetched. Name: %s. Use the webViewLink to open in browser.",
			file.MimeType, file.Name)
	}

	if result.Note == "" {
		text, result.Truncated = TruncateContent(text)
		result.Content = &text
		if result.Truncated {
			result.Note = fmt.Sprintf("Content truncated to %d bytes.", MaxContentBytes)
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, NewError(CategoryPermanent, fmt.Errorf("encode file content: %w", err))
	}
	return data, nil
}

// readText reads at most one rune past the content bound and rejects non UTF-8 bodies
func readText(body io.ReadCloser) (string, error) {
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, MaxContentBytes+utf8.UTFMax))
	if err != nil {
		return "", NewError(CategoryTransient, fmt.Errorf("read drive body: %w", err))
	}

	text := string(raw)
	kept := text
	if len(text) > MaxContentBytes {
		kept = text[:cutPoint(text)]
	}
	if !utf8.ValidString(kept) {
		return "", NewError(CategoryPermanent, errors.New("file is not valid UTF-8"))
	}
	return text, nil
}

func driveError(fileID string, err error) *Error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return NewError(CategoryUnauthorized, fmt.Errorf(
			"access denied for file %s; re-authenticate with `classroom-mcp auth` to grant the drive.readonly scope: %w",
			fileID, err))
	}
	return Classify(fmt.Errorf("drive file %s: %w", fileID, err))
}
