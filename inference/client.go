package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external inference service. The service answers with
// generated text and, when the call was metered, a bolt11 invoice we are
// expected to settle out of band. The text is usable immediately either way.
type Client struct {
	URL   string
	Model string
	Key   string
	http  *http.Client
}

func New(url, model, key string) *Client {
	return &Client{
		URL:   url,
		Model: model,
		Key:   key,
		http:  &http.Client{Timeout: time.Second * 30},
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Text    string `json:"text"`
	Invoice string `json:"invoice,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Result struct {
	Text    string
	Invoice string
}

func (c *Client) Chat(messages []Message) (r Result, e error) {
	b, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return r, err
	}
	req, err := http.NewRequest(http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return r, err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(c.Key) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.Key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return r, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return r, err
	}
	if resp.StatusCode != http.StatusOK {
		return r, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, body)
	}
	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return r, err
	}
	if len(response.Error) > 0 {
		return r, fmt.Errorf("inference service error: %s", response.Error)
	}
	if len(response.Text) == 0 {
		return r, fmt.Errorf("inference service returned no text")
	}
	return Result{Text: response.Text, Invoice: response.Invoice}, nil
}
