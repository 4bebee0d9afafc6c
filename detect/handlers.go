package detect

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"phishguard/classifier"
	"phishguard/features"
)

// maxRequestBody bounds POST /predict payloads.
const maxRequestBody = 1 << 20

// PredictRequest is the JSON body accepted by POST /predict.
type PredictRequest struct {
	URL     string `json:"url"`
	Basic   bool   `json:"basic,omitempty"`
	Explain bool   `json:"explain,omitempty"`
}

// NetworkInfo describes the feature set served by this instance.
type NetworkInfo struct {
	Message         string   `json:"message"`
	Features        []string `json:"features"`
	ModelFeatures   int      `json:"model_features"`
	NetworkFeatures int      `json:"network_features"`
	FeatureNames    []string `json:"feature_names"`
	NetworkNames    []string `json:"network_feature_names"`
	Model           string   `json:"model,omitempty"`
	Status          string   `json:"status"`
}

// Handler serves the detection HTTP API.
type Handler struct {
	d      *Detector
	logger *slog.Logger
}

// NewHandler wraps d for HTTP.
func NewHandler(d *Detector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{d: d, logger: logger}
}

// Register mounts the API on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/predict", h.Predict)
	mux.HandleFunc("/network/info", h.NetworkInfo)
	mux.HandleFunc("/healthz", h.Health)
}

// Predict analyses one URL given as JSON or as the "url" form field.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := decodePredict(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.d.Analyze(r.Context(), req.URL, Options{Basic: req.Basic, Narrate: req.Explain})
	switch {
	case errors.Is(err, ErrEmptyURL):
		writeError(w, http.StatusBadRequest, "Please enter a URL")
	case errors.Is(err, classifier.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Model not available")
	case err != nil:
		h.logger.Error("prediction failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "Error analyzing URL: "+err.Error())
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func decodePredict(w http.ResponseWriter, r *http.Request) (PredictRequest, error) {
	var req PredictRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			return req, errors.New("invalid JSON body")
		}
		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid form body")
	}
	req.URL = r.FormValue("url")
	req.Basic, _ = strconv.ParseBool(r.FormValue("basic"))
	req.Explain, _ = strconv.ParseBool(r.FormValue("explain"))
	return req, nil
}

// NetworkInfo reports the feature schema and model status.
func (h *Handler) NetworkInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	info := NetworkInfo{
		Message: "Network-oriented phishing detection system",
		Features: []string{
			"DNS analysis",
			"Network latency measurement",
			"WHOIS domain information",
			"HTTP response analysis",
		},
		ModelFeatures:   features.NumModelFeatures,
		NetworkFeatures: len(features.NetworkFeatureNames),
		FeatureNames:    features.ModelFeatureNames[:],
		NetworkNames:    features.NetworkFeatureNames,
		Status:          "active",
	}
	if h.d.Available() {
		info.Model = h.d.model.Name()
	} else {
		info.Status = "model_unavailable"
	}
	writeJSON(w, http.StatusOK, info)
}

// Health is a liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"model_available": h.d.Available(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
