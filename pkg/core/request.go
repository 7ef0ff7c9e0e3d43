package core

import "maps"

// Params carries operation parameters into Protocol.BuildRequest.
type Params map[string]any

// Request is a transport-agnostic descriptor of a single HTTP call.
// Body holds the exact serialized JSON bytes: authenticated requests sign
// the body byte-for-byte, so it is serialized once and dispatched verbatim.
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       map[string]string `json:"query,omitempty"`
	Body        []byte            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequireAuth bool              `json:"require_auth"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   make(map[string]string),
		Headers: make(map[string]string),
	}
}

func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(map[string]string)
	}
	r.Query[key] = value
	return r
}

func (r *Request) SetQueryParams(params map[string]string) *Request {
	if r.Query == nil {
		r.Query = make(map[string]string)
	}
	maps.Copy(r.Query, params)
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}
