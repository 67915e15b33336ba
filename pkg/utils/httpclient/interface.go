/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package httpclient

import (
	"io"
	"net/http"
)

type Interface interface {
	Get(url string, headers ...string) (*Result, error)
	Post(url string, body interface{}, headers ...string) (*Result, error)
	Head(url string, headers ...string) (*Result, error)
	// GetStream returns the response body as a stream; the caller must
	// close it. Used for image downloads that should not be buffered.
	GetStream(url string, headers ...string) (io.ReadCloser, int, error)
	Do(req *http.Request) (*Result, error)
}

type Result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}
