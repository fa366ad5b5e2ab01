package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("content backend config invalid")
	ErrRequestFailed   = errors.New("content backend request failed")
	ErrResponseInvalid = errors.New("content backend response invalid")
)

const (
	defaultTimeout     = 10 * time.Second
	defaultAPIVersion  = "2024-01-01"
	maxErrorBodyLength = 512
)

// Config 内容后端连接配置。
type Config struct {
	BaseURL    string
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	Timeout    time.Duration
	UseCDN     bool
}

// Document 待写入的后端文档。
type Document map[string]interface{}

// MutationResult 写入结果。
type MutationResult struct {
	TransactionID string `json:"transactionId"`
	DocumentID    string `json:"document_id"`
	Operation     string `json:"operation"`
}

type queryEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type mutateEnvelope struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Client 内容后端 HTTP 客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建客户端。
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" && strings.TrimSpace(cfg.ProjectID) == "" {
		return fmt.Errorf("%w: base_url or project_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Dataset) == "" {
		return fmt.Errorf("%w: dataset is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Dataset = strings.TrimSpace(c.Dataset)
	c.Token = strings.TrimSpace(c.Token)
	c.APIVersion = strings.TrimPrefix(strings.TrimSpace(c.APIVersion), "v")
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// HasToken 是否配置了写入令牌。
func (c *Client) HasToken() bool {
	return c != nil && c.cfg.Token != ""
}

// Query 执行只读查询，并将 result 字段解码到 dest。
// params 中的值以查询参数绑定，不拼接进查询字符串。
func (c *Client) Query(ctx context.Context, query string, params map[string]interface{}, dest interface{}) error {
	if c == nil {
		return fmt.Errorf("%w: client is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is empty", ErrConfigInvalid)
	}
	values, err := encodeQueryParams(query, params)
	if err != nil {
		return err
	}
	endpoint := c.endpoint(c.cfg.UseCDN && c.cfg.Token == "", "query") + "?" + values.Encode()

	body, statusCode, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("%w: query status %d: %s", ErrRequestFailed, statusCode, truncateBody(body))
	}

	var envelope queryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrResponseInvalid, err)
	}
	if dest == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, dest); err != nil {
		return fmt.Errorf("%w: decode result: %v", ErrResponseInvalid, err)
	}
	return nil
}

// Create 创建新文档。
func (c *Client) Create(ctx context.Context, doc Document) (*MutationResult, error) {
	return c.mutate(ctx, "create", doc)
}

// CreateOrReplace 按 _id 创建或覆盖文档。
func (c *Client) CreateOrReplace(ctx context.Context, doc Document) (*MutationResult, error) {
	if id, _ := doc["_id"].(string); strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: _id is required for createOrReplace", ErrConfigInvalid)
	}
	return c.mutate(ctx, "createOrReplace", doc)
}

func (c *Client) mutate(ctx context.Context, operation string, doc Document) (*MutationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrConfigInvalid)
	}
	if c.cfg.Token == "" {
		return nil, fmt.Errorf("%w: token is required for mutations", ErrConfigInvalid)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrConfigInvalid)
	}
	if docType, _ := doc["_type"].(string); strings.TrimSpace(docType) == "" {
		return nil, fmt.Errorf("%w: _type is required", ErrConfigInvalid)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"mutations": []map[string]interface{}{
			{operation: doc},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode mutation: %v", ErrRequestFailed, err)
	}
	endpoint := c.endpoint(false, "mutate") + "?returnIds=true&visibility=sync"

	body, statusCode, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: mutate status %d: %s", ErrRequestFailed, statusCode, truncateBody(body))
	}

	var envelope mutateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode mutation: %v", ErrResponseInvalid, err)
	}
	result := &MutationResult{TransactionID: envelope.TransactionID}
	if len(envelope.Results) > 0 {
		result.DocumentID = envelope.Results[0].ID
		result.Operation = envelope.Results[0].Operation
	}
	if result.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrResponseInvalid)
	}
	return result, nil
}

func (c *Client) endpoint(useCDN bool, action string) string {
	base := c.cfg.BaseURL
	if base == "" {
		host := "api"
		if useCDN {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", c.cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/%s/%s", base, c.cfg.APIVersion, action, url.PathEscape(c.cfg.Dataset))
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func encodeQueryParams(query string, params map[string]interface{}) (url.Values, error) {
	values := url.Values{}
	values.Set("query", query)
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name := strings.TrimPrefix(strings.TrimSpace(key), "$")
		if name == "" {
			return nil, fmt.Errorf("%w: empty param name", ErrConfigInvalid)
		}
		encoded, err := json.Marshal(params[key])
		if err != nil {
			return nil, fmt.Errorf("%w: encode param %s: %v", ErrRequestFailed, name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	return values, nil
}

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodyLength {
		return text[:maxErrorBodyLength] + "..."
	}
	return text
}
