// Package delivery composes inventory reports as MIME email and sends
// them over SES or SMTP.
package delivery

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/mkarlsen/orgscan/types"
)

// base64LineLength wraps encoded attachment bodies per RFC 2045.
const base64LineLength = 76

// Message is one outbound report email.
type Message struct {
	From        string
	To          string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []types.Artifact
}

// Encode renders the message as a raw RFC 5322 multipart/mixed
// document suitable for both SES raw sending and SMTP DATA.
func (m *Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + m.From,
		"To: " + m.To,
	}
	if m.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+m.ReplyTo)
	}
	headers = append(headers,
		"Subject: "+m.Subject,
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="`+mw.Boundary()+`"`,
	)
	var msg bytes.Buffer
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/plain; charset="utf-8"`)
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(m.Body)); err != nil {
		return nil, err
	}

	for _, attachment := range m.Attachments {
		if err := writeAttachment(mw, attachment); err != nil {
			return nil, fmt.Errorf("encoding attachment %s: %w", attachment.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	msg.Write(buf.Bytes())
	return msg.Bytes(), nil
}

func writeAttachment(mw *multipart.Writer, attachment types.Artifact) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", attachmentContentType(attachment.Name))
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.Name))

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(attachment.Data)
	for len(encoded) > 0 {
		n := base64LineLength
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func attachmentContentType(name string) string {
	if strings.HasSuffix(name, ".csv") {
		return `text/csv; charset="utf-8"`
	}
	return `text/plain; charset="utf-8"`
}
