package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// fileFieldName is the form field name the file part is sent under.
const fileFieldName = "file"

// EncodeMultipart serializes extra string fields plus one file into an
// RFC 7578 multipart/form-data body.
//
// Field parts come first in sorted key order so the output is deterministic;
// the file part is last, carrying the filename and its MIME type. The
// returned contentType embeds the exact boundary used to encode the body:
// callers must set it on the request unchanged, since a regenerated boundary
// would not match the body.
func EncodeMultipart(file []byte, filename, mimeType string, fields map[string]string) (body []byte, contentType string, err error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	// One fresh boundary per request.
	if err := writer.SetBoundary("featnet-" + uuid.NewString()); err != nil {
		return nil, "", fmt.Errorf("failed to set boundary: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		fileFieldName, escapeQuotes(filename)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, "", fmt.Errorf("failed to write file content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
