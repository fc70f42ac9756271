package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crystal/pkg/observability"
)

// loggingHooks reports pipeline, cache and HTTP events at debug level.
type loggingHooks struct {
	logger *log.Logger
}

// registerLoggingHooks installs debug logging for every observability event.
func registerLoggingHooks(logger *log.Logger) {
	h := &loggingHooks{logger: logger.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *loggingHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *loggingHooks) OnLoadComplete(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "duration", d, "err", err)
		return
	}
	h.logger.Debug("load complete", "source", source, "nodes", nodeCount, "duration", d)
}

func (h *loggingHooks) OnSolveStart(_ context.Context, nodeCount int, width, height float32) {
	h.logger.Debug("solve start", "nodes", nodeCount, "width", width, "height", height)
}

func (h *loggingHooks) OnSolveComplete(_ context.Context, nodeCount, layoutErrors int, d time.Duration) {
	h.logger.Debug("solve complete", "nodes", nodeCount, "errors", layoutErrors, "duration", d)
}

func (h *loggingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *loggingHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *loggingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *loggingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *loggingHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *loggingHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.logger.Debug("request", "request_id", requestID, "method", method, "path", path)
}

func (h *loggingHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "request_id", requestID, "method", method, "path", path, "status", status, "duration", d)
}

func (h *loggingHooks) OnError(_ context.Context, requestID, method, path string, err error) {
	h.logger.Debug("request error", "request_id", requestID, "method", method, "path", path, "err", err)
}
