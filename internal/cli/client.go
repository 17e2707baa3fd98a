package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// PanelResponse — панель из API.
type PanelResponse struct {
	URLPath       string         `json:"url_path"`
	ComponentName string         `json:"component_name"`
	Title         string         `json:"title"`
	Icon          string         `json:"icon"`
	RequireAdmin  bool           `json:"require_admin"`
	Config        map[string]any `json:"config,omitempty"`
}

// TelegramResponse — телеграмма в строковом виде UI.
type TelegramResponse struct {
	DestinationAddress string `json:"destination_address"`
	Payload            string `json:"payload"`
	SourceAddress      string `json:"source_address"`
	Direction          string `json:"direction"`
	Timestamp          string `json:"timestamp"`
}

// InfoResponse — результат panel/info.
type InfoResponse struct {
	Version        string `json:"version"`
	Connected      bool   `json:"connected"`
	CurrentAddress string `json:"current_address"`
}

// GroupMonitorInfoResponse — результат panel/group_monitor_info.
type GroupMonitorInfoResponse struct {
	ProjectLoaded   bool               `json:"project_loaded"`
	RecentTelegrams []TelegramResponse `json:"recent_telegrams"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для knxpanel API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL возвращает адрес сервера.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Panels ---

// ListPanels возвращает зарегистрированные панели.
func (c *Client) ListPanels() ([]PanelResponse, error) {
	var panels []PanelResponse
	err := c.list("/api/panels", nil, &panels)
	return panels, err
}

// GetPanel возвращает панель по url_path.
func (c *Client) GetPanel(urlPath string) (*PanelResponse, error) {
	var panel PanelResponse
	err := c.get("/api/panels/"+url.PathEscape(urlPath), &panel)
	return &panel, err
}

// --- Telegrams ---

// ListTelegrams возвращает последние телеграммы. limit <= 0 — значение сервера.
func (c *Client) ListTelegrams(limit int) ([]TelegramResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var telegrams []TelegramResponse
	err := c.list("/api/telegrams", params, &telegrams)
	return telegrams, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	resp, err := c.do(http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(dr.Data, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) do(method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
