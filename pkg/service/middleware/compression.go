package middleware

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"
	"strings"

	"mercator-hq/relay/pkg/service"
)

// BodyCarrier is implemented by response types whose body can be read and
// replaced wholesale, which is all Compression/Decompression need — they
// do not stream.
type BodyCarrier interface {
	HeaderCarrier
	Body() []byte
	SetBody([]byte)
}

// Compression gzip-encodes the response body returned by inner whenever
// the request indicates gzip is an acceptable content-coding (a
// HeaderCarrier request with "gzip" in its Accept-Encoding header), and
// sets the response's Content-Encoding header accordingly. Bodies already
// carrying a Content-Encoding are left untouched.
//
// No third-party compression library appears anywhere in the retrieval
// pack (see DESIGN.md); compress/gzip is the standard library's only
// reasonable choice here.
func Compression[State any, Req HeaderCarrier, Resp BodyCarrier](level int) service.Layer[State, Req, Resp] {
	return service.LayerFunc[State, Req, Resp](func(inner service.Service[State, Req, Resp]) service.Service[State, Req, Resp] {
		return service.ServiceFunc[State, Req, Resp](func(ctx service.Context[State], req Req) (Resp, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return resp, err
			}
			if resp.Header().Get("Content-Encoding") != "" {
				return resp, nil
			}
			if !acceptsGzip(req.Header()) {
				return resp, nil
			}

			var buf bytes.Buffer
			zw, zerr := gzip.NewWriterLevel(&buf, level)
			if zerr != nil {
				return resp, fmt.Errorf("middleware: compression: %w", zerr)
			}
			if _, zerr := zw.Write(resp.Body()); zerr != nil {
				return resp, fmt.Errorf("middleware: compression: %w", zerr)
			}
			if zerr := zw.Close(); zerr != nil {
				return resp, fmt.Errorf("middleware: compression: %w", zerr)
			}

			resp.SetBody(buf.Bytes())
			resp.Header().Set("Content-Encoding", "gzip")
			return resp, nil
		})
	})
}

func acceptsGzip(h http.Header) bool {
	for _, v := range h.Values("Accept-Encoding") {
		for _, part := range strings.Split(v, ",") {
			coding, _, _ := strings.Cut(part, ";")
			coding = strings.TrimSpace(coding)
			if coding == "gzip" || coding == "*" {
				return true
			}
		}
	}
	return false
}
