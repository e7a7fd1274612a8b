package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/matchday/pkg/api"
)

// ErrConflict сервер отклонил апсерт из-за нарушения уникальности
// (дубль order_no в сессии). Движок push оставляет запись pending.
var ErrConflict = errors.New("conflict")

// Client представляет HTTP клиент для взаимодействия с сервером синхронизации
type Client struct {
	httpClient *http.Client
	baseURL    string
	clubID     string
}

// NewClient создает новый API клиент. clubID передаётся в каждом запросе
// заголовком X-Club-ID и определяет видимую область данных.
func NewClient(baseURL, clubID string) *Client {
	return &Client{
		baseURL: baseURL,
		clubID:  clubID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Сохраняем заголовок клуба при редиректе
				if len(via) > 0 && via[0].Header.Get("X-Club-ID") != "" {
					req.Header.Set("X-Club-ID", via[0].Header.Get("X-Club-ID"))
				}
				return nil
			},
		},
	}
}

// Endpoint типизированный доступ к /api/v1/sync/<entity>.
type Endpoint[W api.Row] struct {
	client *Client
	entity string
}

// NewEndpoint создает endpoint для одной сущности протокола.
func NewEndpoint[W api.Row](c *Client, entity string) *Endpoint[W] {
	return &Endpoint[W]{client: c, entity: entity}
}

// Select возвращает страницу строк с updated_at строго больше since,
// упорядоченных по updated_at по возрастанию. Включает tombstones.
func (e *Endpoint[W]) Select(ctx context.Context, since time.Time, limit, offset int) ([]W, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/v1/sync/" + e.entity
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.SelectResponse[W]
	if err := e.client.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("select %s failed: %w", e.entity, err)
	}
	return resp.Rows, nil
}

// Upsert отправляет строки на сервер и возвращает ack с авторитетными
// серверными временами. Идемпотентен по id.
func (e *Endpoint[W]) Upsert(ctx context.Context, rows []W) ([]api.Ack, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	var resp api.UpsertResponse
	req := api.UpsertRequest[W]{Rows: rows}
	if err := e.client.doRequest(ctx, http.MethodPost, "/api/v1/sync/"+e.entity, req, &resp); err != nil {
		return nil, fmt.Errorf("upsert %s failed: %w", e.entity, err)
	}
	return resp.Acks, nil
}

// Delete помечает строки tombstone на сервере. Возвращает ids,
// которые сервер реально затомбстоунил (уже удалённые пропускаются).
func (e *Endpoint[W]) Delete(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resp api.DeleteResponse
	req := api.DeleteRequest{IDs: ids}
	if err := e.client.doRequest(ctx, http.MethodPost, "/api/v1/sync/"+e.entity+"/delete", req, &resp); err != nil {
		return nil, fmt.Errorf("delete %s failed: %w", e.entity, err)
	}
	return resp.IDs, nil
}

// IDs возвращает полный список живых id сущности для reconciliation sweep.
func (e *Endpoint[W]) IDs(ctx context.Context) ([]string, error) {
	var resp api.IDsResponse
	if err := e.client.doRequest(ctx, http.MethodGet, "/api/v1/sync/"+e.entity+"/ids", nil, &resp); err != nil {
		return nil, fmt.Errorf("ids %s failed: %w", e.entity, err)
	}
	return resp.IDs, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Club-ID", c.clubID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		msg := string(respBody)
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			msg = errResp.Message
			if msg == "" {
				msg = errResp.Error
			}
		}
		if resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("server error (%d): %s: %w", resp.StatusCode, msg, ErrConflict)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
