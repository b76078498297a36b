package lsp

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"valed/internal/lint"
)

// CommandLintWorkspace triggers the on-demand whole-workspace lint.
const CommandLintWorkspace = "valed.lintWorkspace"

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	if params.Command != CommandLintWorkspace {
		return s.sendError(msg.ID, -32602, fmt.Sprintf("unknown command %q", params.Command))
	}
	// The batch can take a while; respond immediately and report through
	// $/progress instead of holding the request open.
	if err := s.sendResponse(msg.ID, nil); err != nil {
		return err
	}
	if !s.batchBusy.CompareAndSwap(false, true) {
		s.showMessage(messageTypeInfo, "a workspace lint is already running")
		return nil
	}
	if s.syncLint {
		s.runWorkspaceLint()
		return nil
	}
	go s.runWorkspaceLint()
	return nil
}

func (s *Server) runWorkspaceLint() {
	defer s.batchBusy.Store(false)

	s.mu.Lock()
	roots := append([]string(nil), s.workspaceRoots...)
	lintWorkspace := s.lintWorkspace
	s.mu.Unlock()
	if len(roots) == 0 {
		s.showMessage(messageTypeInfo, "no workspace folders to lint")
		return
	}

	token := fmt.Sprintf("valed/lint/%d", s.progressSeq.Add(1))
	if err := s.sendRequest("window/workDoneProgress/create", workDoneProgressCreateParams{Token: token}); err != nil {
		s.logf("failed to create progress token: %v", err)
		token = ""
	}
	s.progress(token, progressValue{Kind: "begin", Title: "Linting workspace"})

	err := lintWorkspace(s.ctx(), roots, lint.ProgressFunc(func(ev lint.Event) {
		if msg := progressMessage(ev); msg != "" {
			s.progress(token, progressValue{Kind: "report", Message: msg})
		}
	}))

	s.progress(token, progressValue{Kind: "end", Message: "done"})
	if err != nil {
		s.showError(fmt.Sprintf("workspace lint failed: %s", lint.UserMessage(err)))
	}
}

func (s *Server) progress(token string, value progressValue) {
	if token == "" {
		return
	}
	if err := s.sendNotification("$/progress", progressParams{Token: token, Value: value}); err != nil {
		s.logf("failed to send progress: %v", err)
	}
}

func progressMessage(ev lint.Event) string {
	name := ev.Root
	if name != "" {
		name = filepath.Base(name)
	}
	switch {
	case ev.Stage == lint.StageDiscover && ev.Status == lint.StatusDone:
		return fmt.Sprintf("found %d files", ev.Files)
	case ev.Stage == lint.StageLint && ev.Status == lint.StatusWorking:
		return fmt.Sprintf("linting %s", name)
	case ev.Stage == lint.StageLint && ev.Status == lint.StatusDone:
		return fmt.Sprintf("linted %s (%d files)", name, ev.Files)
	case ev.Stage == lint.StagePublish && ev.Status == lint.StatusDone:
		return "publishing results"
	}
	return ""
}
