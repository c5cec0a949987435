package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/translate", s.translate)
		api.POST("/translate/batch", s.translateBatch)
		api.POST("/translate/clipboard", s.translateClipboard)

		api.POST("/monitor/start", s.startMonitor)
		api.POST("/monitor/stop", s.stopMonitor)

		api.GET("/ledger", s.getLedger)
		api.POST("/ledger/reset", s.resetLedger)

		api.GET("/terminology", s.getTerminology)
		api.PUT("/terminology", s.putTerminology)
		api.POST("/terminology/presets", s.importPresets)

		api.GET("/models", s.listModels)
		api.PUT("/model", s.selectModel)
		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.putSettings)
		api.PUT("/mode", s.setMode)
		api.PUT("/languages", s.setLanguages)
		api.POST("/languages/swap", s.swapLanguages)

		api.GET("/results", s.listResults)
		api.GET("/events", s.streamEvents)

		api.GET("/history", s.listHistory)
		api.GET("/history/stats", s.historyStats)
	}
}
