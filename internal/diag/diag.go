// Package diag serves the file read timing demo and host diagnostics.
package diag

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/usergraph/internal/logger"
)

// Handler reads Path for the timing endpoints.
type Handler struct {
	Path string
}

func NewHandler(path string) *Handler {
	return &Handler{Path: path}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/getsync", h.GetSync)
	r.Get("/getasync", h.GetAsync)
	r.Get("/osinfo", h.OSInfo)
}

// GetSync reads the file on the request goroutine.
func (h *Handler) GetSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := os.ReadFile(h.Path)
	if err != nil {
		h.fail(w, r, "Error reading file synchronously: ", err)

		return
	}

	logger.FromContext(r.Context()).Infow("sync read done", "path", h.Path, "elapsed", time.Since(start))
	render.PlainText(w, r, string(data))
}

// GetAsync reads the file on a separate goroutine and waits for it.
func (h *Handler) GetAsync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var data []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		data, err = os.ReadFile(h.Path)

		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, "Error reading file asynchronously: ", err)

		return
	}

	logger.FromContext(r.Context()).Infow("async read done", "path", h.Path, "elapsed", time.Since(start))
	render.PlainText(w, r, string(data))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	logger.FromContext(r.Context()).Errorw("file read failed", "path", h.Path, "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.PlainText(w, r, prefix+err.Error())
}

// OSInfo logs host details; the response only points at the log.
func (h *Handler) OSInfo(w http.ResponseWriter, r *http.Request) {
	LogOSInfo(logger.FromContext(r.Context()))
	render.PlainText(w, r, "Check console")
}

// LogOSInfo writes OS, release and architecture, plus memory and user on
// amd64 hosts.
func LogOSInfo(log *zap.SugaredLogger) {
	fields := []interface{}{
		"os", runtime.GOOS,
		"os_version", kernelRelease(),
		"arch", runtime.GOARCH,
	}

	if runtime.GOARCH == "amd64" {
		if total, ok := totalMemory(); ok {
			fields = append(fields, "ram", fmt.Sprintf("%.2f GB", float64(total)/(1024*1024*1024)))
		}
		if u, err := user.Current(); err == nil {
			fields = append(fields, "user", u.Username)
		}
	}

	log.Infow("OS info", fields...)
}

func kernelRelease() string {
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "unknown"
	}

	return strings.TrimSpace(string(data))
}

// totalMemory reads MemTotal from /proc/meminfo, in bytes.
func totalMemory() (uint64, bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	return parseMemTotal(bufio.NewScanner(f))
}

func parseMemTotal(sc *bufio.Scanner) (uint64, bool) {
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}

		return kb * 1024, true
	}

	return 0, false
}
