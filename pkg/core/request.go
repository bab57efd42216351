package core

import "maps"

type Request struct {
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Params     Params            `json:"params,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Weight     int               `json:"weight"`
	OrderCount int               `json:"order_count"`
	Signed     bool              `json:"signed"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Params:  make(Params),
		Headers: make(map[string]string),
		Weight:  1,
	}
}

func (r *Request) SetParam(key, value string) *Request {
	if r.Params == nil {
		r.Params = make(Params)
	}
	r.Params[key] = value
	return r
}

func (r *Request) SetParams(params Params) *Request {
	if r.Params == nil {
		r.Params = make(Params)
	}
	maps.Copy(r.Params, params)
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetHeaders(headers map[string]string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	maps.Copy(r.Headers, headers)
	return r
}

func (r *Request) SetWeight(weight int) *Request {
	r.Weight = weight
	return r
}

// SetOrderCount records how many orders the request places, for the
// unfilled-order rate limit.
func (r *Request) SetOrderCount(n int) *Request {
	r.OrderCount = n
	return r
}

func (r *Request) SetSigned(signed bool) *Request {
	r.Signed = signed
	return r
}

// Encoded returns the canonical encoding of the request parameters.
func (r *Request) Encoded() string {
	return r.Params.Encode()
}
