package docqa

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// uploadField is the multipart form field the service reads the file from.
const uploadField = "file"

// sniffLen is how much of the file is inspected to detect its type.
const sniffLen = 3072

// knownTypes maps the extensions the service accepts to their part type.
var knownTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".text": "text/plain",
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// errNoContent reports an upload without a readable file.
var errNoContent = errors.New("no file content")

// encodeUpload streams the multipart body for file through a pipe and
// returns it with the request Content-Type. Only the sniffed head is held
// in memory. A read failure part way through closes the body with that
// error. The caller must close the returned body.
func encodeUpload(file *domain.UploadFile) (io.ReadCloser, string, error) {
	if file == nil || file.Content == nil {
		return nil, "", errNoContent
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	head = head[:n]

	name := filepath.Base(file.Name)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType(name, head))

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	formType := w.FormDataContentType()
	body := io.MultiReader(bytes.NewReader(head), file.Content)

	go func() {
		pw.CloseWithError(writeForm(w, header, body))
	}()

	return pr, formType, nil
}

// writeForm writes one file part and the closing boundary.
func writeForm(w *multipart.Writer, header textproto.MIMEHeader, body io.Reader) error {
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}
	return nil
}

// contentType picks the part type by extension, then by content.
// Parameters such as charset are dropped.
func contentType(name string, head []byte) string {
	if t, ok := knownTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	detected, _, _ := strings.Cut(mimetype.Detect(head).String(), ";")
	return strings.TrimSpace(detected)
}
