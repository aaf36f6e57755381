package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

const maxBodyBytes = 6 << 20

// htmlPart extracts the text/html part of a raw RFC822 message, decoding
// transfer encodings. Returns "" when the message has no HTML part.
func htmlPart(raw []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxBodyBytes))
	return findHTML(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), body)
}

func findHTML(contentType, transferEncoding string, body []byte) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return ""
			}
			partBody, _ := io.ReadAll(io.LimitReader(part, maxBodyBytes))
			if html := findHTML(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				partBody,
			); html != "" {
				return html
			}
		}
	}

	if mediaType == "text/html" {
		return string(decodeTransfer(transferEncoding, body))
	}
	return ""
}

func decodeTransfer(encoding string, body []byte) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		if b, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body))); err == nil {
			return b
		}
	case "base64":
		clean := strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' {
				return -1
			}
			return r
		}, string(body))
		if b, err := base64.StdEncoding.DecodeString(clean); err == nil {
			return b
		}
	}
	return body
}
