package rest

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"strings"

	"github.com/zoobzio/tether"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeForm writes a multipart body. Attached files become file parts; nil
// and unattached files become empty fields; nested values are JSON encoded.
func encodeForm(form *tether.Form) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, e := range form.Entries() {
		var err error
		switch v := e.Value.(type) {
		case tether.File:
			if !tether.IsFile(v) {
				err = w.WriteField(e.Name, "")
				break
			}
			err = writeFile(w, e.Name, &v)
		case *tether.File:
			if !tether.IsFile(v) {
				err = w.WriteField(e.Name, "")
				break
			}
			err = writeFile(w, e.Name, v)
		default:
			var s string
			s, err = formValue(v)
			if err == nil {
				err = w.WriteField(e.Name, s)
			}
		}
		if err != nil {
			return nil, "", fmt.Errorf("form field %s: %w", e.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, name string, f *tether.File) error {
	filename := f.Name
	if filename == "" {
		filename = name
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}

// formValue renders a non-file value as a form field.
func formValue(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if m, ok := v.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		return string(text), err
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return fmt.Sprint(rv.Interface()), nil
}
