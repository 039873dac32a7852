package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// DocumentClient archives generated receipt PDFs in the document-service.
type DocumentClient interface {
	// UploadDocument stores one document and returns its metadata
	UploadDocument(ctx context.Context, req *DocumentUploadRequest) (*StoredDocument, error)
}

// DocumentUploadRequest describes one document to store.
type DocumentUploadRequest struct {
	TenantID    string
	Bucket      string
	Path        string
	Filename    string
	ContentType string
	Data        []byte
	IsPublic    bool
	EntityType  string // "receipt"
	EntityID    string
}

// StoredDocument is the document-service's record of an uploaded file.
type StoredDocument struct {
	ID        string `json:"id"`
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	URL       string `json:"url,omitempty"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"`
	CreatedAt string `json:"createdAt"`
}

type documentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDocumentClient creates a new document client
func NewDocumentClient(baseURL string) DocumentClient {
	if baseURL == "" {
		baseURL = "http://document-service:8080"
	}
	return &documentClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // uploads can be slow
		},
	}
}

func (c *documentClient) UploadDocument(ctx context.Context, req *DocumentUploadRequest) (*StoredDocument, error) {
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v1/documents/upload", c.baseURL), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Tenant-ID", req.TenantID)
	httpReq.Header.Set("X-Internal-Service", "storefront-service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("document upload failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var stored StoredDocument
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &stored, nil
}

// encodeUpload renders the multipart form body the document-service expects.
func encodeUpload(req *DocumentUploadRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}

	fields := map[string]string{
		"bucket":      req.Bucket,
		"path":        req.Path,
		"contentType": req.ContentType,
		"isPublic":    strconv.FormatBool(req.IsPublic),
		"entity_type": req.EntityType,
		"entity_id":   req.EntityID,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
