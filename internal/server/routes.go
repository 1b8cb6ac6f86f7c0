package server

// RegisterRoutes attaches every HTTP endpoint to the echo instance.
func (s *Server) RegisterRoutes() {
	// The WebSocket transport all chat traffic flows over.
	s.E.GET("/ws", s.hub.Handler())

	// User and group directory.
	s.E.POST("/api/users", s.directoryHandler.CreateUser)
	s.E.GET("/api/users", s.directoryHandler.ListUsers)
	s.E.POST("/api/groups", s.directoryHandler.CreateGroup)
	s.E.GET("/api/users/:username/groups", s.directoryHandler.ListUserGroups)

	// Attachment upload and retrieval.
	s.E.POST("/api/upload", s.uploadHandler.Upload)
	s.E.GET("/uploads/:name", s.uploadHandler.Serve)
}
