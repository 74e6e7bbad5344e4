// Package server exposes the review core over HTTP. The layer is thin by
// design: request parsing, path resolution and JSON rendering only; every
// decision lives in the packages it glues together.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/complyco/copilot/internal/correlate"
	"github.com/complyco/copilot/internal/extract"
	"github.com/complyco/copilot/internal/model"
	"github.com/complyco/copilot/internal/pipeline"
	"github.com/complyco/copilot/internal/retrieve"
	"github.com/complyco/copilot/internal/rulestore"
)

// maxUploadBytes caps rule and contract uploads
const maxUploadBytes = 32 << 20

// ruleSnippetLimit bounds the rule text returned by the explain endpoint
const ruleSnippetLimit = 2000

var knownRegions = map[string]bool{"EU": true, "US": true, "IN": true, "UK": true}

// Server is the HTTP facade over the review pipeline
type Server struct {
	cfg        model.Config
	store      *rulestore.Store
	engine     *retrieve.Engine
	extractor  *extract.Client
	pipe       *pipeline.Pipeline
	correlator *correlate.Engine
}

// New creates a server
func New(cfg model.Config, store *rulestore.Store, engine *retrieve.Engine, extractor *extract.Client, pipe *pipeline.Pipeline) *Server {
	return &Server{
		cfg:        cfg,
		store:      store,
		engine:     engine,
		extractor:  extractor,
		pipe:       pipe,
		correlator: correlate.NewEngine(),
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /upload_rule", s.handleUploadRule)
	mux.HandleFunc("POST /upload_contract", s.handleUploadContract)
	mux.HandleFunc("GET /check", s.handleCheck)
	mux.HandleFunc("GET /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /explain", s.handleExplain)
	mux.HandleFunc("GET /risk_summary", s.handleRiskSummary)
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("GET /rule", s.handleGetRule)
	mux.HandleFunc("POST /rule", s.handleSaveRule)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleUploadRule(w http.ResponseWriter, r *http.Request) {
	path, err := s.saveUpload(r, s.cfg.Dirs.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.AddFromFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: uploaded rule not ingested: %v\n", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": path})
}

func (s *Server) handleUploadContract(w http.ResponseWriter, r *http.Request) {
	path, err := s.saveUpload(r, s.cfg.Dirs.Contracts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fields, _ := s.extractor.Fields(r.Context(), path)

	// Sidecar JSON next to the contract so later checks can skip extraction
	if data, err := json.MarshalIndent(fields, "", "  "); err == nil {
		sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		if err := os.WriteFile(sidecar, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write field sidecar: %v\n", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": path, "fields": fields})
}

// handleCheck runs the per-field check and merges in cross-field risk flags.
// The merge happens here, at the boundary: the two analyses stay independent
// inside the core.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	region, ok := s.region(w, r)
	if !ok {
		return
	}
	path, err := s.contractPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flags, fields, err := s.pipe.Check(r.Context(), path, region)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	correlations := s.correlator.Analyze(fields, region)
	flags = append(flags, pipeline.CorrelationFlags(correlations, region)...)

	writeJSON(w, http.StatusOK, flags)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	region, ok := s.region(w, r)
	if !ok {
		return
	}
	path, err := s.contractPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.pipe.AnalyzeDocument(r.Context(), path, region, r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleExplain resolves a flag id back to its contract evidence and the
// closest rule passage, with matched terms highlighted
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("id is required"))
		return
	}
	region, ok := s.region(w, r)
	if !ok {
		return
	}

	// Flag ids are {category}-{field}-{rule}; tolerate shorter forms
	category, fieldName := "privacy", id
	if parts := strings.SplitN(id, "-", 3); len(parts) >= 2 {
		category, fieldName = parts[0], parts[1]
	}

	path, err := s.contractPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fields, _ := s.extractor.Fields(r.Context(), path)
	var evidence *model.Evidence
	var fieldValue string
	for _, f := range fields {
		if f.Name == fieldName {
			ev := f.Evidence
			evidence = &ev
			fieldValue = f.Value
			break
		}
	}

	var snippet, highlighted string
	if hits := s.engine.SearchCategory(r.Context(), category, 1); len(hits) > 0 {
		snippet = hits[0].Text
		if len(snippet) > ruleSnippetLimit {
			snippet = snippet[:ruleSnippetLimit]
		}
		highlighted = retrieve.ExtractContext(hits[0].Text, fieldName+" "+fieldValue)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"region": region,
		"contract": map[string]any{
			"path":     path,
			"evidence": evidence,
		},
		"rule_snippet": snippet,
		"rule_context": highlighted,
	})
}

func (s *Server) handleRiskSummary(w http.ResponseWriter, r *http.Request) {
	region, ok := s.region(w, r)
	if !ok {
		return
	}
	path, err := s.contractPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	fields, _ := s.extractor.Fields(r.Context(), path)
	summary := s.correlator.Summarize(s.correlator.Analyze(fields, region))
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	type item struct {
		Name  string `json:"name"`
		Path  string `json:"path"`
		Size  int64  `json:"size"`
		MTime int64  `json:"mtime"`
		Ext   string `json:"ext"`
	}

	items := []item{}
	entries, err := os.ReadDir(s.cfg.Dirs.Rules)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			switch ext {
			case ".md", ".txt", ".html", ".htm":
			default:
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			items = append(items, item{
				Name:  e.Name(),
				Path:  filepath.Join(s.cfg.Dirs.Rules, e.Name()),
				Size:  info.Size(),
				MTime: info.ModTime().Unix(),
				Ext:   ext,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	path, err := s.rulePath(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("rule not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "text": string(data)})
}

func (s *Server) handleSaveRule(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode payload: %w", err))
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "rule_snippet.md"
	} else if !strings.Contains(name, ".") {
		name += ".md"
	}

	path, err := s.rulePath(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := os.MkdirAll(s.cfg.Dirs.Rules, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := os.WriteFile(path, []byte(payload.Text), 0644); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.store.Add(payload.Text)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": name, "path": path})
}

// region validates the region query parameter, writing a 400 on failure
func (s *Server) region(w http.ResponseWriter, r *http.Request) (string, bool) {
	region := strings.ToUpper(r.URL.Query().Get("region"))
	if region == "" {
		region = "EU"
	}
	if !knownRegions[region] {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown region %q (supported: EU, US, IN, UK)", region))
		return "", false
	}
	return region, true
}

// contractPath resolves the contract to analyze: an explicit contract_path
// query parameter, or the most recently modified upload
func (s *Server) contractPath(r *http.Request) (string, error) {
	if path := r.URL.Query().Get("contract_path"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("contract_path not found")
		}
		return path, nil
	}
	return latestFile(s.cfg.Dirs.Contracts)
}

// rulePath joins a user-supplied rule name onto the rules dir, rejecting
// traversal
func (s *Server) rulePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid rule name")
	}
	return filepath.Join(s.cfg.Dirs.Rules, name), nil
}

// saveUpload writes the multipart "file" part into destDir
func (s *Server) saveUpload(r *http.Request, destDir string) (string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("missing file part: %w", err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name")
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(destDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes)); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// latestFile returns the most recently modified regular file in dir
func latestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("no contracts uploaded")
	}

	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().Unix() > newestMod {
			newest = filepath.Join(dir, e.Name())
			newestMod = info.ModTime().Unix()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no contracts uploaded")
	}
	return newest, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
