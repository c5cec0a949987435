package server

import (
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/orchestrator"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/store"
	"github.com/valpere/cliptran/internal/terminology"
)

type translateRequest struct {
	Text string `json:"text" binding:"required"`
}

type batchRequest struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

type terminologyBody struct {
	Terms []terminology.Entry `json:"terms"`
}

type modelRequest struct {
	ID string `json:"id" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type languagesRequest struct {
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
}

// settingsRequest holds the toggles; nil fields are left unchanged.
type settingsRequest struct {
	Quality  *bool   `json:"quality"`
	AutoCopy *bool   `json:"auto_copy"`
	Display  *string `json:"display"`
}

type modelInfo struct {
	pricing.ModelProfile
	Active bool `json:"active"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"monitor": s.engine.MonitorRunning(),
	})
}

func (s *Server) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "text is required")
		return
	}
	res, err := s.engine.TranslateOne(c.Request.Context(), req.Text)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) translateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	lines := req.Lines
	if req.Text != "" {
		lines = append(lines, req.Text)
	}
	batch, err := s.engine.TranslateBatch(c.Request.Context(), lines)
	if err != nil && batch == nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) translateClipboard(c *gin.Context) {
	res, err := s.engine.TranslateClipboard(c.Request.Context())
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) startMonitor(c *gin.Context) {
	if err := s.engine.StartMonitor(s.base); err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (s *Server) stopMonitor(c *gin.Context) {
	s.engine.StopMonitor()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) getLedger(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Ledger())
}

func (s *Server) resetLedger(c *gin.Context) {
	s.engine.ResetLedger()
	c.JSON(http.StatusOK, s.engine.Ledger())
}

func (s *Server) getTerminology(c *gin.Context) {
	c.JSON(http.StatusOK, terminologyBody{Terms: s.engine.Terminology().Entries()})
}

func (s *Server) putTerminology(c *gin.Context) {
	var body terminologyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	dict, err := terminology.NewDictionary(body.Terms...)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.engine.UpdateTerminology(dict)
	c.JSON(http.StatusOK, terminologyBody{Terms: dict.Entries()})
}

func (s *Server) importPresets(c *gin.Context) {
	added := s.engine.ImportPresets()
	c.JSON(http.StatusOK, gin.H{"added": added, "total": s.engine.Terminology().Len()})
}

func (s *Server) listModels(c *gin.Context) {
	active := s.engine.Settings().ModelID
	profiles := s.engine.Models()
	out := make([]modelInfo, len(profiles))
	for i, p := range profiles {
		out[i] = modelInfo{ModelProfile: p, Active: p.ID == active}
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

func (s *Server) selectModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.engine.SelectModel(req.ID); err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.ActiveModel())
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) putSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Display != nil {
		if err := s.engine.SetDisplay(orchestrator.DisplayPolicy(*req.Display)); err != nil {
			respondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Quality != nil {
		s.engine.SetQuality(*req.Quality)
	}
	if req.AutoCopy != nil {
		s.engine.SetAutoCopy(*req.AutoCopy)
	}
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "mode is required")
		return
	}
	if err := s.engine.SetMode(mode.Mode(req.Mode)); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) setLanguages(c *gin.Context) {
	var req languagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "source and target are required")
		return
	}
	if err := s.engine.SetLanguages(req.Source, req.Target); err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) swapLanguages(c *gin.Context) {
	if err := s.engine.SwapLanguages(); err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) listResults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"results": s.engine.Results()})
}

// streamEvents relays the engine's event stream as server-sent events until
// the client goes away.
func (s *Server) streamEvents(c *gin.Context) {
	events, cancel := s.engine.Subscribe(0)
	defer cancel()

	setStreamingHeaders(c)
	c.Status(http.StatusOK)
	if _, err := c.Writer.WriteString(": connected\n\n"); err != nil {
		return
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.base.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := sonic.Marshal(ev)
			if err != nil {
				s.logger.Warn("failed to encode event %s: %v", ev.ID, err)
				continue
			}
			if _, err := writeSSEEvent(c.Writer, string(ev.Kind), data); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func (s *Server) listHistory(c *gin.Context) {
	if s.history == nil {
		respondWithError(c, http.StatusNotImplemented, "history is disabled")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		respondWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	records, err := s.history.ListHistory(c.Request.Context(), store.ListFilter{
		Status: c.Query("status"),
		Limit:  limit,
	})
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) historyStats(c *gin.Context) {
	if s.history == nil {
		respondWithError(c, http.StatusNotImplemented, "history is disabled")
		return
	}
	stats, err := s.history.Stats(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
