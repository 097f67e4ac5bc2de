package server

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/outlier"
	"github.com/go-chi/chi/v5"
)

const defaultSaveName = "dataset.csv"

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: no file uploaded", errBadRequest))
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(hdr.Filename), ".csv") {
		s.writeError(w, fmt.Errorf("%w: only CSV files are allowed", errBadRequest))
		return
	}
	e, err := s.lib.AddReader(filepath.Base(hdr.Filename), file)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.LoadFile(e.Path); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("loaded %s (%d rows, %d columns)", e.Name, e.Rows, e.Columns)
	sum, err := s.store.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Records())
}

func (s *Server) handleAttributes(w http.ResponseWriter, r *http.Request) {
	hs, err := s.store.Headers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

type removeAttributesRequest struct {
	Attributes []string `json:"attributesToRemove"`
}

func (s *Server) handleRemoveAttributes(w http.ResponseWriter, r *http.Request) {
	var req removeAttributesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	removed := s.store.RemoveAttributes(req.Attributes...)
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Attributes removed.", "removed": removed})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reload(); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, "Undo completed.")
}

// attributeDetails always carries a stats object; it is empty for
// non-numeric attributes.
type attributeDetails struct {
	Name      string             `json:"name"`
	DataType  analysis.DataType  `json:"dataType"`
	Missing   int                `json:"missingValues"`
	Distinct  int                `json:"distinctValues"`
	Stats     any                `json:"stats"`
	Histogram analysis.Histogram `json:"histogramData"`
}

func (s *Server) handleAttributeDetails(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "attribute"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: attribute name: %v", errBadRequest, err))
		return
	}
	a, err := s.store.Attribute(name, s.opt.Bins)
	if err != nil {
		s.writeError(w, err)
		return
	}
	d := attributeDetails{
		Name:      a.Name,
		DataType:  a.DataType,
		Missing:   a.Missing,
		Distinct:  a.Distinct,
		Stats:     struct{}{},
		Histogram: a.Histogram,
	}
	if a.Stats != nil {
		d.Stats = a.Stats
	}
	writeJSON(w, http.StatusOK, d)
}

type removeOutliersRequest struct {
	Dataset   tablePayload `json:"dataset"`
	Attribute string       `json:"attribute"`
}

func (s *Server) handleRemoveOutliers(w http.ResponseWriter, r *http.Request) {
	var req removeOutliersRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Dataset.table == nil {
		s.writeError(w, fmt.Errorf("%w: dataset is required", errBadRequest))
		return
	}
	if req.Attribute == "" {
		out, fences := outlier.IQR(req.Dataset.table, nil, s.opt.IQRFactor)
		s.log.Debug("iqr over %d columns kept %d/%d rows", len(fences), out.NumRows(), req.Dataset.table.NumRows())
		writeJSON(w, http.StatusOK, req.Dataset.render(out))
		return
	}
	out, f, err := outlier.Bounds(req.Dataset.table, req.Attribute, s.opt.Sigma)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Debug("bounds on %s [%g, %g] kept %d/%d rows", f.Column, f.Lower, f.Upper, out.NumRows(), req.Dataset.table.NumRows())
	writeJSON(w, http.StatusOK, req.Dataset.render(out))
}

type saveDatasetRequest struct {
	Directory string       `json:"directory"`
	Dataset   tablePayload `json:"dataset"`
}

func (s *Server) handleSaveDataset(w http.ResponseWriter, r *http.Request) {
	var req saveDatasetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Directory == "" || req.Dataset.table == nil {
		s.writeError(w, fmt.Errorf("%w: directory and dataset are required", errBadRequest))
		return
	}
	name := defaultSaveName
	if src := s.store.Source(); src != "" {
		name = filepath.Base(src)
	}
	path, err := library.SaveTable(req.Directory, name, req.Dataset.table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dataset saved successfully.", "path": path})
}
