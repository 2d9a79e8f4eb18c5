package server

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fuzzymatch/internal/frame"
	"github.com/sells-group/fuzzymatch/internal/resolve"
)

// matchResponse is the two-set output shape.
type matchResponse struct {
	Rows []matchRow `json:"rows"`
}

type matchRow struct {
	ID      string   `json:"id"`
	Matches []string `json:"matches"`
}

// dedupResponse is the single-set output shape.
type dedupResponse struct {
	Rows []dedupRow `json:"rows"`
}

type dedupRow struct {
	ID         string   `json:"id"`
	Duplicates []string `json:"duplicates"`
}

// handleMatch links every row of the "tomatch" upload to candidates in
// the "pool" upload, per the "spec" YAML part.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(int64(s.cfg.Server.MaxUploadMB) << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyDefaults(&spec)

	toMatch, err := uploadedFrame(r, "tomatch")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pool, err := uploadedFrame(r, "pool")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := resolve.Match(r.Context(), toMatch, pool, spec)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if eris.Is(err, resolve.ErrMemoryLimit) {
			status = http.StatusInsufficientStorage
		}
		zap.L().Error("match request failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}

	resp := matchResponse{Rows: make([]matchRow, len(rows))}
	for i, row := range rows {
		resp.Rows[i] = matchRow{ID: row.ID, Matches: emptyNotNil(row.Matches)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDedup groups duplicate rows within the "records" upload.
func (s *Server) handleDedup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(int64(s.cfg.Server.MaxUploadMB) << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	spec, err := parseSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyDefaults(&spec)

	records, err := uploadedFrame(r, "records")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := resolve.Dedup(r.Context(), records, spec)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if eris.Is(err, resolve.ErrMemoryLimit) {
			status = http.StatusInsufficientStorage
		}
		zap.L().Error("dedup request failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}

	resp := dedupResponse{Rows: make([]dedupRow, len(rows))}
	for i, row := range rows {
		resp.Rows[i] = dedupRow{ID: row.ID, Duplicates: row.Duplicates}
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseSpec reads the "spec" form value (YAML) into a resolve.Spec.
func parseSpec(r *http.Request) (resolve.Spec, error) {
	var spec resolve.Spec

	raw := r.FormValue("spec")
	if raw == "" {
		return spec, eris.New("missing spec form field")
	}
	if err := yaml.Unmarshal([]byte(raw), &spec); err != nil {
		return spec, eris.Wrap(err, "parse spec")
	}

	// Progress events have no consumer over HTTP.
	spec.ProgressEvery = 0
	return spec, nil
}

// applyDefaults fills spec knobs left unset from server config.
func (s *Server) applyDefaults(spec *resolve.Spec) {
	if spec.Workers == 0 {
		spec.Workers = s.cfg.Match.Workers
	}
	if spec.MemoryPct == 0 {
		spec.MemoryPct = s.cfg.Match.MemoryPct
	}
	if spec.StrThreshold == 0 {
		spec.StrThreshold = s.cfg.Match.StrThreshold
	}
	if spec.NumThreshold == 0 {
		spec.NumThreshold = s.cfg.Match.NumThreshold
	}
	if spec.Weight == 0 {
		spec.Weight = s.cfg.Match.Weight
	}
}

// uploadedFrame loads the named multipart file into a frame, dispatching
// on the uploaded filename's extension.
func uploadedFrame(r *http.Request, field string) (*frame.Frame, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, eris.Wrapf(err, "missing %s file", field)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		return frame.ReadCSV(r.Context(), file, frame.CSVOptions{TrimSpace: true})
	case ".tsv":
		return frame.ReadCSV(r.Context(), file, frame.CSVOptions{Delimiter: '\t', TrimSpace: true})
	case ".xlsx":
		return xlsxFrame(file, header)
	default:
		return nil, eris.Errorf("%s: unsupported file type %q", field, filepath.Ext(header.Filename))
	}
}

// xlsxFrame spools an uploaded workbook to disk first; the XLSX reader
// needs a seekable file.
func xlsxFrame(file multipart.File, header *multipart.FileHeader) (*frame.Frame, error) {
	tmp, err := os.CreateTemp("", "fuzzymatch-*.xlsx")
	if err != nil {
		return nil, eris.Wrap(err, "spool xlsx upload")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.ReadFrom(file); err != nil {
		tmp.Close()
		return nil, eris.Wrap(err, "spool xlsx upload")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "spool xlsx upload")
	}

	return frame.LoadXLSX(tmp.Name(), frame.XLSXOptions{})
}

func emptyNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
