package report

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/report"
)

type auditLine struct {
	message  string
	mismatch bool
}

// auditPass collects the audit lines of one reconciliation pass. Lines are
// buffered and written on flush, so a rolled back batch still leaves its
// log behind.
type auditPass struct {
	ref        report.AuditRef
	pending    []auditLine
	total      int
	mismatches int
}

func newAuditPass(ref report.AuditRef) *auditPass {
	return &auditPass{ref: ref}
}

func (p *auditPass) add(message string, mismatch bool) {
	p.pending = append(p.pending, auditLine{message: message, mismatch: mismatch})
	p.total++
	if mismatch {
		p.mismatches++
	}
}

// info records a plain line
func (p *auditPass) info(format string, args ...any) {
	p.add(fmt.Sprintf(format, args...), false)
}

// mismatch records an unresolved row
func (p *auditPass) mismatch(format string, args ...any) {
	p.add(fmt.Sprintf(format, args...), true)
}

// Lines returns how many lines the pass produced so far
func (p *auditPass) Lines() int {
	return p.total
}

// Mismatches returns how many mismatch lines the pass produced so far
func (p *auditPass) Mismatches() int {
	return p.mismatches
}

// HasMismatch reports whether any row could not be resolved
func (p *auditPass) HasMismatch() bool {
	return p.mismatches > 0
}

// flush writes pending lines to the sink in order
func (p *auditPass) flush(ctx context.Context, sink report.AuditSink) error {
	for len(p.pending) > 0 {
		line := p.pending[0]
		if err := sink.AppendLogLine(ctx, p.ref, line.message, line.mismatch); err != nil {
			return fmt.Errorf("append audit line: %w", err)
		}
		p.pending = p.pending[1:]
	}
	return nil
}

// close flushes the pass and drops the log when the pass was clean
func (p *auditPass) close(ctx context.Context, sink report.AuditSink) error {
	if err := p.flush(ctx, sink); err != nil {
		return err
	}
	if p.total == 0 {
		return sink.DeleteAllIfEmpty(ctx, p.ref)
	}
	return nil
}
