package listener

import (
	"bufio"
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/nowplaying/pkg/pipeline"
)

var tracer = otel.Tracer("github.com/zachfi/nowplaying/modules/listener")

// methodSource is the verb Traktor and older Icecast source clients upload
// with. Newer clients use PUT.
const methodSource = "SOURCE"

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := l.logger.With("conn", uuid.New().String(), "remote", conn.RemoteAddr().String())

	br := bufio.NewReader(conn)
	req, err := http.ReadRequest(br)
	if err != nil {
		metricConnections.WithLabelValues(resultRejected).Inc()
		logger.Warn("unreadable source request", "err", err)
		return
	}

	if status := l.authorize(req); status != http.StatusOK {
		metricConnections.WithLabelValues(resultRejected).Inc()
		logger.Warn("rejected source", "method", req.Method, "path", req.URL.Path, "status", status)
		_ = writeStatus(conn, status)
		return
	}

	if strings.EqualFold(req.Header.Get("Expect"), "100-continue") {
		_, err = io.WriteString(conn, "HTTP/1.1 100 Continue\r\n\r\n")
	} else {
		err = writeStatus(conn, http.StatusOK)
	}
	if err != nil {
		metricConnections.WithLabelValues(resultError).Inc()
		logger.Warn("error answering source", "err", err)
		return
	}

	logger.Info("source connected", "method", req.Method, "mount", req.URL.Path, "content_type", req.Header.Get("Content-Type"))

	ctx, span := tracer.Start(ctx, "Listener.handle")
	span.SetAttributes(
		attribute.String("mount", req.URL.Path),
		attribute.String("remote", conn.RemoteAddr().String()),
	)

	err = l.session.Consume(ctx, body(req, br))
	switch {
	case err == nil:
		metricConnections.WithLabelValues(resultClosed).Inc()
		logger.Info("source disconnected")
	case pipeline.IsFormatError(err):
		metricConnections.WithLabelValues(resultFormatError).Inc()
	default:
		metricConnections.WithLabelValues(resultError).Inc()
	}

	_ = tracing.ErrHandler(span, err, "source stream failed", logger)
}

// authorize checks the method and, when a password is configured, the basic
// auth credentials of req.
func (l *Listener) authorize(req *http.Request) int {
	if req.Method != methodSource && req.Method != http.MethodPut {
		return http.StatusMethodNotAllowed
	}

	if l.cfg.SourcePassword == "" {
		return http.StatusOK
	}

	_, password, ok := req.BasicAuth()
	if !ok || subtle.ConstantTimeCompare([]byte(password), []byte(l.cfg.SourcePassword)) != 1 {
		return http.StatusUnauthorized
	}
	return http.StatusOK
}

// body returns the stream of Ogg bytes following the request head. SOURCE
// uploads carry no framing, so the rest of the connection is the stream.
func body(req *http.Request, br *bufio.Reader) io.Reader {
	if len(req.TransferEncoding) > 0 || req.ContentLength > 0 {
		return req.Body
	}
	return br
}

func writeStatus(w io.Writer, status int) error {
	var extra string
	if status == http.StatusUnauthorized {
		extra = "WWW-Authenticate: Basic realm=\"nowplaying\"\r\n"
	}
	_, err := fmt.Fprintf(w, "HTTP/1.0 %d %s\r\n%s\r\n", status, http.StatusText(status), extra)
	return err
}
