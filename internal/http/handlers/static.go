package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// StaticHandler serves the front-end directory for every unmatched route.
// Unknown paths fall back to index.html so client-side routes resolve.
type StaticHandler struct {
	root string
	log  *slog.Logger
}

func NewStaticHandler(root string, log *slog.Logger) *StaticHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StaticHandler{root: root, log: log}
}

func (h *StaticHandler) Serve(ctx *gin.Context) {
	method := ctx.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		RespondNotFound(ctx, "not found")
		return
	}

	// rooted Clean drops any ".." that would climb out of root
	rel := path.Clean("/" + ctx.Request.URL.Path)
	full := filepath.Join(h.root, filepath.FromSlash(rel))

	if name, fi, ok := h.resolve(full); ok {
		h.serveFile(ctx, name, fi)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if fi, err := os.Stat(index); err == nil && fi.Mode().IsRegular() {
		h.serveFile(ctx, index, fi)
		return
	}

	RespondNotFound(ctx, "file not found")
}

// resolve maps a path to a regular file, using index.html for directories.
func (h *StaticHandler) resolve(full string) (string, fs.FileInfo, bool) {
	fi, err := os.Stat(full)
	if err != nil {
		return "", nil, false
	}

	if fi.IsDir() {
		full = filepath.Join(full, "index.html")
		if fi, err = os.Stat(full); err != nil {
			return "", nil, false
		}
	}

	if !fi.Mode().IsRegular() {
		return "", nil, false
	}
	return full, fi, true
}

func (h *StaticHandler) serveFile(ctx *gin.Context, name string, fi fs.FileInfo) {
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondNotFound(ctx, "file not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "static file open failed", "err", err)
		RespondInternal(ctx, msgInternal)
		return
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		if mt, err := mimetype.DetectReader(f); err == nil {
			ctype = mt.String()
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			RespondInternal(ctx, msgInternal)
			return
		}
	}
	if ctype != "" {
		ctx.Header("Content-Type", ctype)
	}

	// ServeContent answers If-None-Match against this header
	ctx.Header("ETag", fileETag(fi))

	http.ServeContent(ctx.Writer, ctx.Request, fi.Name(), fi.ModTime(), f)
}

func fileETag(fi fs.FileInfo) string {
	sum := sha256.Sum256([]byte(fi.Name() + ":" + strconv.FormatInt(fi.Size(), 10) + ":" + strconv.FormatInt(fi.ModTime().UnixNano(), 10)))

	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}
