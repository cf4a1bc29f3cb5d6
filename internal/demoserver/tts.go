package demoserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/meetvaani/vaani/internal/backend"
	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/pkg/utils"
)

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req backend.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	if s.synth == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis unavailable")
		return
	}

	language := normalizeLanguage(req.Language)
	candidates := s.catalog.Candidates(req.VoiceID, language)
	if len(candidates) == 0 {
		utils.RespondError(w, http.StatusNotFound, "no voice available for language "+language)
		return
	}
	profile := candidates[0]

	result, err := s.synth.Synthesize(r.Context(), speechmodel.SynthesisRequest{
		Text:     req.Text,
		Voice:    profile.EngineVoice,
		Language: language,
		Speed:    1.0,
	})
	if err != nil {
		s.log.Error().Err(err).Str("voice", profile.ID).Msg("synthesis failed")
		utils.RespondError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	format := result.Format
	if format == "" {
		format = "wav"
	}

	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Audio); err != nil {
		s.log.Warn().Err(err).Msg("failed to write audio response")
	}
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	grouped := make(map[string][]backend.VoiceInfo)
	for _, v := range s.catalog.All() {
		grouped[v.Language] = append(grouped[v.Language], backend.VoiceInfo{
			ID:          v.ID,
			Name:        v.Name,
			Description: v.Description,
		})
	}

	utils.RespondJSON(w, http.StatusOK, backend.VoiceListResponse{Voices: grouped})
}
