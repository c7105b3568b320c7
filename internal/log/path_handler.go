package log

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// pathKeys contains attribute keys whose values are filesystem paths
// and should be shortened to root-relative form.
var pathKeys = map[string]bool{
	"path":   true,
	"file":   true,
	"dir":    true,
	"header": true,
}

// PathHandler wraps an slog.Handler to rewrite absolute filesystem
// paths under a scan root into root-relative form. Deeply nested
// source trees produce long absolute paths that drown out the rest of
// a log line; the relative form is what the report prints, so logs and
// reports name files the same way.
//
// Design decision: We use a handler wrapper rather than shortening
// paths at each call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay oblivious to how paths are rendered
type PathHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler

	// root is the absolute scan root that path attributes are made relative to.
	root string
}

// NewPathHandler creates a new PathHandler wrapping the given handler.
// Path attributes beneath root are rewritten to root-relative form.
// If handler is nil, the returned PathHandler will use slog.Default().Handler().
func NewPathHandler(handler slog.Handler, root string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &PathHandler{handler: handler, root: root}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's path attributes and passes it to the
// underlying handler.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
// Path attributes are rewritten before being added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewrittenAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewrittenAttrs[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewrittenAttrs), root: h.root}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), root: h.root}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewrittenAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewrittenAttrs[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewrittenAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	if !pathKeys[strings.ToLower(a.Key)] {
		return a
	}

	value := a.Value.String()
	if !filepath.IsAbs(value) {
		return a
	}
	rel, err := filepath.Rel(h.root, value)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Outside the root, leave it absolute.
		return a
	}
	return slog.String(a.Key, rel)
}

// NewLogger creates a new slog.Logger for scan output. Path attributes
// under root are rendered root-relative.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - root: The scan root that path attributes are made relative to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewLogger(w io.Writer, root string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	pathHandler := NewPathHandler(textHandler, root)

	return slog.New(pathHandler)
}
