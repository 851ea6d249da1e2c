package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/metrics", s.handleMetrics)

	s.router.HandleFunc("/complete", s.handleComplete)   // GET ?prefix=
	s.router.HandleFunc("/words", s.handleWords)         // POST {"word": ...}
	s.router.HandleFunc("/frequency", s.handleFrequency) // GET snapshot
	s.router.HandleFunc("/stats", s.handleStats)         // GET vocabulary sizes
}
