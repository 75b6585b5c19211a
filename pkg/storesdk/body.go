package storesdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartBody is a form upload. Pass it as the body of Do; it is
// encoded once so a replay after a token refresh sends identical bytes.
type MultipartBody struct {
	Fields []FormField
	Files  []FormFile
}

type FormField struct {
	Name  string
	Value string
}

type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// payload is an encoded request body ready to be sent any number of times.
type payload struct {
	contentType string
	data        []byte
}

func encodeBody(body any) (payload, error) {
	switch b := body.(type) {
	case nil:
		return payload{}, nil
	case MultipartBody:
		return b.encode()
	case *MultipartBody:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return payload{}, &APIError{Kind: KindValidation, Message: "body is not JSON serialisable", Err: err}
		}
		return payload{contentType: "application/json", data: data}, nil
	}
}

func (m *MultipartBody) encode() (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return payload{}, fmt.Errorf("storesdk: write field %q: %w", f.Name, err)
		}
	}

	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return payload{}, fmt.Errorf("storesdk: create part %q: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return payload{}, fmt.Errorf("storesdk: write part %q: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return payload{}, fmt.Errorf("storesdk: close multipart: %w", err)
	}
	return payload{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
