package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// go:generate mockgen -source network/http.go -destination=tests/mock/network/http.go -package=mock
type Http interface {
	Get(req *http.Request) ([]byte, error)
	PostJson(url string, body interface{}) ([]byte, error)
}

type StatusErr struct {
	Url        string
	StatusCode int
	Body       string
}

func (e *StatusErr) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.Url, e.StatusCode, e.Body)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp() Http {
	return &DefaultHttp{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *DefaultHttp) Get(req *http.Request) ([]byte, error) {
	return d.do(req)
}

func (d *DefaultHttp) PostJson(url string, body interface{}) ([]byte, error) {
	bz, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(bz))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return d.do(req)
}

func (d *DefaultHttp) do(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := string(buf)
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &StatusErr{Url: req.URL.String(), StatusCode: resp.StatusCode, Body: body}
	}

	return buf, nil
}
