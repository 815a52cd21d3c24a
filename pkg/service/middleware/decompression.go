package middleware

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"mercator-hq/relay/pkg/service"
)

// Decompression gzip-decodes the request body when the request carries a
// Content-Encoding: gzip header, before calling inner. The header is
// cleared once the body has been decoded so inner never has to care.
func Decompression[State any, Req BodyCarrier, Resp any]() service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			var zero Resp
			if req.Header().Get("Content-Encoding") != "gzip" {
				return inner.Serve(ctx, req)
			}

			zr, err := gzip.NewReader(bytes.NewReader(req.Body()))
			if err != nil {
				return zero, fmt.Errorf("middleware: decompression: %w", err)
			}
			defer zr.Close()

			decoded, err := io.ReadAll(zr)
			if err != nil {
				return zero, fmt.Errorf("middleware: decompression: %w", err)
			}

			req.SetBody(decoded)
			req.Header().Del("Content-Encoding")
			return inner.Serve(ctx, req)
		})
	})
}
