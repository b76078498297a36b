package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	if s.applySettings(params.Settings) {
		if !s.injected {
			s.rebuildPipeline()
		}
	}
	return nil
}

// applySettings overlays the client's "valed" settings block onto the file
// configuration. Only fields the client actually sent change. Reports
// whether anything changed.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return false
	}
	changed := false
	s.mu.Lock()
	if settings.Valed.ValePath != nil {
		s.cfg.ValePath = *settings.Valed.ValePath
		changed = true
	}
	if settings.Valed.Extensions != nil {
		s.cfg.Extensions = settings.Valed.Extensions
		changed = true
	}
	if settings.Valed.Exclude != nil {
		s.cfg.Exclude = settings.Valed.Exclude
		changed = true
	}
	if settings.Valed.MinValeVersion != nil {
		s.cfg.MinValeVersion = *settings.Valed.MinValeVersion
		changed = true
	}
	s.mu.Unlock()
	return changed
}
