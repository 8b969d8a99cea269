// ABOUTME: Multipart form encoding for endpoints that accept file uploads
// ABOUTME: Flattens a JSON payload into form fields and appends the attached files

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strconv"
)

// Upload is a file attached to a create/update call
type Upload struct {
	Field    string
	FileName string
	Content  io.Reader
}

type multipartBody struct {
	data        []byte
	contentType string
}

// newMultipartBody encodes payload's JSON fields as form values followed by uploads
func newMultipartBody(payload any, uploads []Upload) (*multipartBody, error) {
	fields := map[string]any{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := writeField(w, k, fields[k]); err != nil {
			return nil, err
		}
	}

	for _, u := range uploads {
		part, err := w.CreateFormFile(u.Field, u.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, u.Content); err != nil {
			return nil, fmt.Errorf("failed to copy file data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &multipartBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func writeField(w *multipart.Writer, key string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return w.WriteField(key, v)
	case float64:
		return w.WriteField(key, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return w.WriteField(key, strconv.FormatBool(v))
	case []any:
		for _, item := range v {
			if err := writeField(w, key, item); err != nil {
				return err
			}
		}
		return nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return w.WriteField(key, string(data))
	}
}
