package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/compare"
	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleLibraryUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	file, hdr, err := r.FormFile("dataset")
	if err != nil {
		file, hdr, err = r.FormFile("file")
	}
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: no file uploaded", errBadRequest))
		return
	}
	defer file.Close()
	e, err := s.lib.AddReader(filepath.Base(hdr.Filename), file)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("added %s to library", e.Name)
	writeJSON(w, http.StatusOK, map[string]string{"message": "File uploaded successfully.", "fileName": e.Name})
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	entries := s.lib.List()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")
	if err := s.lib.Delete(name); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("deleted %s from library", name)
	writeMessage(w, "File deleted successfully.")
}

func (s *Server) handleLibraryAttributes(w http.ResponseWriter, r *http.Request) {
	hs, err := s.lib.Attributes(chi.URLParam(r, "fileName"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	var req compare.Request
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Datasets) == 0 || req.XAxis == "" || req.YAxis == "" {
		s.writeError(w, fmt.Errorf("%w: datasets, xAxis and yAxis are required", errBadRequest))
		return
	}
	chart, err := compare.Align(r.Context(), s.lib, req, s.opt.CompareWorkers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart.Series)
}

type saveConfigurationRequest struct {
	Name string `json:"configName"`
	library.Comparison
}

func (s *Server) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	var req saveConfigurationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, fmt.Errorf("%w: configName is required", errBadRequest))
		return
	}
	if err := library.SaveComparison(s.opt.ConfigsDir, req.Name, req.Comparison); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, "Configuration saved successfully.")
}

func (s *Server) handleLoadConfiguration(w http.ResponseWriter, r *http.Request) {
	c, err := library.LoadComparison(s.opt.ConfigsDir, chi.URLParam(r, "configName"), s.lib)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
