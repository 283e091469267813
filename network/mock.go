package network

import "net/http"

type MockHttp struct {
	GetFunc      func(req *http.Request) ([]byte, error)
	PostJsonFunc func(url string, body interface{}) ([]byte, error)
}

func (m *MockHttp) Get(req *http.Request) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(req)
	}

	return nil, nil
}

func (m *MockHttp) PostJson(url string, body interface{}) ([]byte, error) {
	if m.PostJsonFunc != nil {
		return m.PostJsonFunc(url, body)
	}

	return nil, nil
}
