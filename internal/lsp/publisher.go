package lsp

import (
	"sync"

	"valed/internal/diag"
)

// publisher implements diag.Store by forwarding every store mutation as a
// textDocument/publishDiagnostics notification. It remembers which URIs it
// has published so Delete and Clear only send retractions the client has
// something to retract.
type publisher struct {
	srv       *Server
	mu        sync.Mutex
	published map[string]struct{}
}

func newPublisher(s *Server) *publisher {
	return &publisher{
		srv:       s,
		published: make(map[string]struct{}),
	}
}

func (p *publisher) Set(file string, diags []diag.Diagnostic) {
	list := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		list = append(list, toLSPDiagnostic(d))
	}
	p.mu.Lock()
	p.published[file] = struct{}{}
	p.mu.Unlock()
	if err := p.srv.sendPublish(file, list); err != nil {
		p.srv.logf("failed to publish diagnostics for %s: %v", file, err)
	}
}

func (p *publisher) Delete(file string) {
	p.mu.Lock()
	_, had := p.published[file]
	delete(p.published, file)
	p.mu.Unlock()
	if !had {
		return
	}
	if err := p.srv.sendPublish(file, nil); err != nil {
		p.srv.logf("failed to clear diagnostics for %s: %v", file, err)
	}
}

func (p *publisher) Clear() {
	p.mu.Lock()
	files := make([]string, 0, len(p.published))
	for file := range p.published {
		files = append(files, file)
	}
	p.published = make(map[string]struct{})
	p.mu.Unlock()
	for _, file := range files {
		if err := p.srv.sendPublish(file, nil); err != nil {
			p.srv.logf("failed to clear diagnostics for %s: %v", file, err)
		}
	}
}

func toLSPDiagnostic(d diag.Diagnostic) lspDiagnostic {
	return lspDiagnostic{
		Range: lspRange{
			Start: position{Line: int(d.Range.Start.Line), Character: int(d.Range.Start.Col)},
			End:   position{Line: int(d.Range.End.Line), Character: int(d.Range.End.Col)},
		},
		Severity: lspSeverity(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}
