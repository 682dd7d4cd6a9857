package services

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure ParserRegistry implements the interface.
var _ driven.ParserRegistry = (*ParserRegistry)(nil)

// ParserPriority is the order in which parsers are consulted.
var ParserPriority = []domain.ParserKind{
	domain.ParserPDF,
	domain.ParserWord,
	domain.ParserSpreadsheet,
	domain.ParserTabular,
	domain.ParserPlainText,
}

// ParserRegistry resolves file extensions to parsers.
type ParserRegistry struct {
	parsers []driven.Parser
	byExt   map[string]driven.Parser
}

// NewParserRegistry orders parsers by ParserPriority and checks that no
// extension is claimed twice.
func NewParserRegistry(parsers ...driven.Parser) (*ParserRegistry, error) {
	byKind := make(map[domain.ParserKind]driven.Parser, len(parsers))
	for _, p := range parsers {
		kind := p.Kind()
		if !slices.Contains(ParserPriority, kind) {
			return nil, fmt.Errorf("parser kind %q has no priority slot: %w", kind, domain.ErrInvalidInput)
		}
		if _, dup := byKind[kind]; dup {
			return nil, fmt.Errorf("parser kind %q registered twice: %w", kind, domain.ErrInvalidInput)
		}
		byKind[kind] = p
	}

	reg := &ParserRegistry{byExt: make(map[string]driven.Parser)}
	for _, kind := range ParserPriority {
		p, ok := byKind[kind]
		if !ok {
			continue
		}
		for _, ext := range p.Extensions() {
			ext = NormaliseExtension(ext)
			if owner, taken := reg.byExt[ext]; taken {
				return nil, fmt.Errorf("extension %s claimed by both %s and %s: %w",
					ext, owner.Kind(), kind, domain.ErrInvalidInput)
			}
			reg.byExt[ext] = p
		}
		reg.parsers = append(reg.parsers, p)
	}
	return reg, nil
}

// Resolve returns the parser for ext.
func (r *ParserRegistry) Resolve(ext string) (driven.Parser, error) {
	norm := NormaliseExtension(ext)
	if p, ok := r.byExt[norm]; ok {
		return p, nil
	}
	return nil, domain.UnsupportedFormatError("no parser for format: %s", norm)
}

// Extensions returns every registered extension in priority order.
func (r *ParserRegistry) Extensions() []string {
	var out []string
	for _, p := range r.parsers {
		for _, ext := range p.Extensions() {
			out = append(out, NormaliseExtension(ext))
		}
	}
	return out
}

// NormaliseExtension lower-cases ext and ensures a single leading dot.
func NormaliseExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// ExtensionOf returns the normalised extension of a file name.
func ExtensionOf(name string) string {
	return NormaliseExtension(filepath.Ext(name))
}
