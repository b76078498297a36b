package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"valed/internal/config"
	"valed/internal/lint"
	"valed/internal/vale"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// LintDocFunc runs one lint pass over a single open document.
type LintDocFunc func(ctx context.Context, doc lint.Document)

// LintWorkspaceFunc runs the batch lint over the given project roots.
type LintWorkspaceFunc func(ctx context.Context, roots []string, progress lint.ProgressSink) error

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Config        config.Config
	LintDoc       LintDocFunc
	LintWorkspace LintWorkspaceFunc
}

type docState struct {
	path       string
	languageID string
	version    int
	dirty      bool
}

// Server handles stdio JSON-RPC for the valed LSP.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	docs              map[string]*docState
	workspaceRoots    []string
	shutdownRequested bool
	cfg               config.Config

	lintDoc       LintDocFunc
	lintWorkspace LintWorkspaceFunc
	// injected is set when the lint funcs came from ServerOptions; settings
	// changes must not replace an injected pipeline.
	injected    bool
	batchBusy   atomic.Bool
	requestSeq  atomic.Uint64
	progressSeq atomic.Uint64
	baseCtx     context.Context
	// syncLint makes lint passes run on the dispatch goroutine. Tests only.
	syncLint bool

	pub *publisher
}

// NewServer constructs a new LSP server. When opts leaves the lint funcs
// nil, the real vale pipeline is wired from opts.Config.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	s := &Server{
		in:            bufio.NewReader(in),
		out:           bufio.NewWriter(out),
		docs:          make(map[string]*docState),
		cfg:           opts.Config,
		lintDoc:       opts.LintDoc,
		lintWorkspace: opts.LintWorkspace,
	}
	s.pub = newPublisher(s)
	if s.lintDoc != nil && s.lintWorkspace != nil {
		s.injected = true
	} else {
		s.rebuildPipeline()
	}
	return s
}

// rebuildPipeline wires the vale pipeline from the current configuration.
// Called at construction and after workspace/didChangeConfiguration.
func (s *Server) rebuildPipeline() {
	cfg := s.cfg
	minimum := cfg.MinValeVersion
	if minimum == "" {
		minimum = vale.MinVersion
	}
	runnerFor := func(root string) *vale.Runner {
		return &vale.Runner{Bin: cfg.ResolveValePath(root), Logf: s.logf}
	}
	lintFn := func(ctx context.Context, dir string, paths ...string) (vale.Result, error) {
		return runnerFor(dir).Lint(ctx, dir, paths...)
	}
	gate := vale.NewGate(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return runnerFor(dir).Run(ctx, dir, args...)
	}, minimum)
	ctrl := &lint.Controller{
		Lint:       lintFn,
		Check:      gate.Check,
		Store:      s.pub,
		Notify:     lint.NotifierFunc(s.showError),
		Extensions: cfg.ExtensionList(),
		Logf:       s.logf,
	}

	s.mu.Lock()
	s.lintDoc = ctrl.LintDocument
	s.lintWorkspace = func(ctx context.Context, roots []string, progress lint.ProgressSink) error {
		ws := &lint.Workspace{
			Lint:       lintFn,
			Check:      gate.Check,
			Store:      s.pub,
			Extensions: cfg.ExtensionList(),
			Exclude:    cfg.Exclude,
			KeyFor:     pathToURI,
			Progress:   progress,
			Logf:       s.logf,
		}
		_, err := ws.Run(ctx, roots)
		return err
	}
	s.mu.Unlock()
}

// Run serves LSP requests until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	var roots []string
	for _, folder := range params.WorkspaceFolders {
		if path := uriToPath(folder.URI); path != "" {
			roots = append(roots, path)
		}
	}
	if len(roots) == 0 && params.RootURI != "" {
		if path := uriToPath(params.RootURI); path != "" {
			roots = append(roots, path)
		}
	}
	if len(roots) == 0 && params.RootPath != "" {
		if abs, err := filepath.Abs(params.RootPath); err == nil {
			roots = append(roots, abs)
		}
	}
	s.mu.Lock()
	s.workspaceRoots = roots
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1,
				Save: saveOptions{
					IncludeText: false,
				},
			},
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{CommandLintWorkspace},
			},
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.pub.Clear()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	path := uriToPath(uri)
	if uri == "" || path == "" {
		return nil
	}
	s.mu.Lock()
	s.docs[uri] = &docState{
		path:       path,
		languageID: params.TextDocument.LanguageID,
		version:    params.TextDocument.Version,
	}
	s.mu.Unlock()
	s.scheduleLint(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.mu.Lock()
	if doc, ok := s.docs[params.TextDocument.URI]; ok {
		doc.version = params.TextDocument.Version
		doc.dirty = true
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok {
		doc.dirty = false
	}
	s.mu.Unlock()
	s.scheduleLint(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	s.pub.Delete(uri)
	return nil
}

// scheduleLint kicks off one lint pass for an open document. The document
// state is re-read inside the pass so an intervening didChange turns the
// pass into a no-op instead of publishing stale results.
func (s *Server) scheduleLint(uri string) {
	if s.syncLint {
		s.runLint(uri)
		return
	}
	go s.runLint(uri)
}

func (s *Server) runLint(uri string) {
	s.mu.Lock()
	state, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	doc := lint.Document{
		URI:        uri,
		Path:       state.path,
		LanguageID: state.languageID,
		Dirty:      state.dirty,
		Root:       s.rootForLocked(state.path),
	}
	lintDoc := s.lintDoc
	s.mu.Unlock()
	lintDoc(s.ctx(), doc)
}

// rootForLocked returns the deepest workspace root containing path, or the
// file's own directory when no root claims it. Caller holds s.mu.
func (s *Server) rootForLocked(path string) string {
	owner := ""
	for _, root := range s.workspaceRoots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(owner) {
			owner = root
		}
	}
	if owner == "" {
		owner = filepath.Dir(path)
	}
	return owner
}

func (s *Server) ctx() context.Context {
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return context.Background()
}

func (s *Server) showError(message string) {
	s.showMessage(messageTypeError, message)
}

func (s *Server) showMessage(kind int, message string) {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "window/showMessage",
		"params": showMessageParams{
			Type:    kind,
			Message: message,
		},
	}
	if err := s.send(msg); err != nil {
		s.logf("failed to send showMessage: %v", err)
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendRequest(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      s.requestSeq.Add(1),
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: list,
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
