package scanning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// RemoteOCR implements the Scanner interface against an external OCR
// upload service: POST the file as multipart form data, get back a JSON
// object with the extracted text and/or a pre-split line list. Items in
// the line list may be plain strings or objects carrying a description
// field; ScanResult absorbs both.
type RemoteOCR struct {
	baseURL string
	client  *http.Client
}

// NewRemoteOCR creates a new RemoteOCR Scanner instance
func NewRemoteOCR(baseURL string) (*RemoteOCR, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote ocr base url is required")
	}

	return &RemoteOCR{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second, // OCR on large scans is slow
		},
	}, nil
}

// ExtractText uploads the file and decodes the service response.
func (o *RemoteOCR) ExtractText(data []byte, contentType string) (*ScanResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing form writer: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, o.baseURL+"/upload/receipt", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ocr service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding ocr response: %w", err)
	}

	if result.Text == "" && len(result.Lines) == 0 {
		return nil, fmt.Errorf("ocr service returned no text")
	}

	return &result, nil
}

// Close closes the scanner
func (o *RemoteOCR) Close() error {
	return nil
}
