package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/render"
)

type Handler struct {
	raster   *render.Raster
	maxBytes int64
}

func NewHandler(raster *render.Raster, maxBytes int64) *Handler {
	return &Handler{raster: raster, maxBytes: maxBytes}
}

// Export renders a posted scene blob in the format named by {format}:
// svg, png or pdf.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if format != "svg" && format != "png" && format != "pdf" {
		http.Error(w, "invalid format: must be svg, png, or pdf", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	sc, err := document.Decode(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "drawing"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "svg":
		contentType = "image/svg+xml"
		buf.Write(SVG(sc))
	case "png":
		contentType = "image/png"
		err = PNG(&buf, sc, h.raster)
	case "pdf":
		contentType = "application/pdf"
		err = PDF(&buf, sc)
	}
	if err != nil {
		slog.Error("export failed", "format", format, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)

	slog.Info("export complete", "format", format, "elements", sc.Len(), "size", buf.Len())
}
