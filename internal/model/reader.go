package model

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/especia/especia/internal/profiles"
)

// Opener resolves the data file names referenced by a model
// definition. The default opener reads from the file system.
type Opener func(name string) (io.ReadCloser, error)

func fileOpener(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// parameterSpec is one parsed parameter specification: a
// value/lower/upper/flag tuple, or a reference to another identifier.
type parameterSpec struct {
	value float64
	lower float64
	upper float64
	free  bool
	ref   string
}

// Read parses a model definition. Sections are delimited by braces,
// lines starting with the percent mark are comments. Each section head
// holds the section identifier, the data file name, the wavelength
// range, the number of Legendre basis polynomials, and optional mask
// pairs; the body holds the resolving power specification followed by
// the line specifications, one parameter per line.
func Read(r io.Reader, factory profiles.Factory, open Opener) (*Model, error) {
	if open == nil {
		open = fileOpener
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	m := &Model{
		factory: factory,
		sim:     make(map[string]int),
		pim:     make(map[string]int),
		text:    text,
	}

	var refs []string

	appendSpec := func(spec parameterSpec) {
		m.val = append(m.val, spec.value)
		m.lo = append(m.lo, spec.lower)
		m.up = append(m.up, spec.upper)
		m.msk = append(m.msk, spec.free)
		refs = append(refs, spec.ref)
	}

	for _, chunk := range sectionChunks(text) {
		lines := chunk.lines
		if len(lines) < 2 {
			return nil, &ParseError{Reason: "syntax error: incomplete section"}
		}

		// Section head: id, data file, wavelength range, polynomial
		// count, optional mask pairs.
		fields := strings.Fields(lines[0])
		if len(fields) < 5 {
			return nil, &ParseError{Reason: "input failed: malformed section head"}
		}
		sid := fields[0]
		if _, ok := m.sim[sid]; ok {
			return nil, &ParseError{ID: sid, Reason: "duplicate section identifier"}
		}

		fn := fields[1]
		bounds := make([]float64, 2)
		for i := 0; i < 2; i++ {
			v, err := strconv.ParseFloat(fields[2+i], 64)
			if err != nil {
				return nil, &ParseError{ID: sid, Reason: "input failed: " + err.Error()}
			}
			bounds[i] = v
		}
		p, err := strconv.Atoi(fields[4])
		if err != nil || p < 0 {
			return nil, &ParseError{ID: sid, Reason: "input failed: malformed polynomial count"}
		}

		maskFields := fields[5:]
		if len(maskFields)%2 != 0 {
			return nil, &ParseError{ID: sid, Reason: "input failed: unpaired mask bound"}
		}

		f, err := open(fn)
		if err != nil {
			return nil, &IoError{Name: fn, Err: err}
		}
		data, err := readFluxData(f)
		f.Close()
		if err != nil {
			return nil, &IoError{Name: fn, Err: err}
		}

		sec, err := NewSection(data, bounds[0], bounds[1])
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(maskFields); i += 2 {
			a, err1 := strconv.ParseFloat(maskFields[i], 64)
			b, err2 := strconv.ParseFloat(maskFields[i+1], 64)
			if err1 != nil || err2 != nil {
				return nil, &ParseError{ID: sid, Reason: "input failed: malformed mask bound"}
			}
			sec.Mask(a, b)
		}

		m.sim[sid] = len(m.sections)
		m.sections = append(m.sections, sec)
		m.isc = append(m.isc, len(m.val))
		m.nle = append(m.nle, p)

		// Resolving power specification.
		spec, _, err := parseSpec(lines[1], false)
		if err != nil {
			return nil, err
		}
		appendSpec(spec)

		// Line specifications: an identifier followed by one
		// parameter specification per line.
		lineCount := 0
		body := lines[2:]
		for len(body) > 0 {
			spec, pid, err := parseSpec(body[0], true)
			if err != nil {
				return nil, err
			}
			if pid == "" {
				return nil, &ParseError{Reason: "syntax error: expected a line identifier"}
			}
			if _, ok := m.pim[pid]; ok {
				return nil, &ParseError{ID: pid, Reason: "duplicate line identifier"}
			}
			if len(body) < factory.ParameterCount {
				return nil, &ParseError{ID: pid, Reason: "input failed: incomplete line specification"}
			}

			m.pim[pid] = len(m.val)
			appendSpec(spec)
			for i := 1; i < factory.ParameterCount; i++ {
				spec, pid, err := parseSpec(body[i], false)
				if err != nil {
					return nil, err
				}
				if pid != "" {
					return nil, &ParseError{ID: pid, Reason: "syntax error: unexpected identifier"}
				}
				appendSpec(spec)
			}

			body = body[factory.ParameterCount:]
			lineCount++
		}

		m.nli = append(m.nli, lineCount)
	}

	if len(m.sections) == 0 {
		return nil, &ParseError{Reason: "syntax error: no section found"}
	}

	m.err = make([]float64, len(m.val))
	m.ind = make([]int, len(m.val))
	m.scratch = make([]float64, len(m.val))

	if err := m.resolve(refs); err != nil {
		return nil, err
	}

	return m, nil
}

// sectionChunk is the line-split content of one braced section.
type sectionChunk struct {
	lines []string
}

// sectionChunks strips comments and splits the model text into braced
// sections.
func sectionChunks(text string) []sectionChunk {
	var stripped []string
	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}
		stripped = append(stripped, line)
	}

	var chunks []sectionChunk
	var current []string
	inside := false
	for _, line := range stripped {
		for {
			if !inside {
				i := strings.IndexByte(line, '{')
				if i < 0 {
					break
				}
				inside = true
				line = line[i+1:]
				continue
			}
			i := strings.IndexByte(line, '}')
			if i < 0 {
				if s := strings.TrimSpace(line); s != "" {
					current = append(current, s)
				}
				break
			}
			if s := strings.TrimSpace(line[:i]); s != "" {
				current = append(current, s)
			}
			chunks = append(chunks, sectionChunk{lines: current})
			current = nil
			inside = false
			line = line[i+1:]
		}
	}

	return chunks
}

// parseSpec parses one parameter specification line. When withID is
// true, a leading identifier is accepted and returned. A specification
// is either a value/lower/upper/flag tuple with an optional trailing
// reference, or a bare reference token.
func parseSpec(line string, withID bool) (parameterSpec, string, error) {
	fields := strings.Fields(line)

	id := ""
	if withID && len(fields) > 0 {
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			id = fields[0]
			fields = fields[1:]
		}
	}

	switch len(fields) {
	case 1:
		// A bare reference inherits everything from its target.
		if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return parameterSpec{}, id, &ParseError{Reason: "input failed: malformed parameter specification"}
		}
		return parameterSpec{ref: fields[0]}, id, nil
	case 4, 5:
		var numbers [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return parameterSpec{}, id, &ParseError{Reason: "input failed: " + err.Error()}
			}
			numbers[i] = v
		}
		flag, err := strconv.Atoi(fields[3])
		if err != nil || (flag != 0 && flag != 1) {
			return parameterSpec{}, id, &ParseError{Reason: "input failed: malformed free flag"}
		}
		spec := parameterSpec{
			value: numbers[0],
			lower: numbers[1],
			upper: numbers[2],
			free:  flag == 1,
		}
		if len(fields) == 5 {
			spec.ref = fields[4]
		}
		return spec, id, nil
	default:
		return parameterSpec{}, id, &ParseError{Reason: "input failed: malformed parameter specification"}
	}
}

// resolve indexes the free parameters and dereferences the alias
// chains of sections and lines.
func (m *Model) resolve(refs []string) error {
	// Index the free, non-aliased parameters; swap inverted bounds.
	k := 0
	for i := range m.val {
		if m.msk[i] && refs[i] == "" {
			if m.lo[i] > m.up[i] {
				m.lo[i], m.up[i] = m.up[i], m.lo[i]
			}
			m.ind[i] = k
			k++
		} else {
			m.lo[i] = 0.0
			m.up[i] = 0.0
			m.ind[i] = 0
		}
	}

	// Dereference resolving power references between sections.
	for _, si := range m.sim {
		j := m.isc[si]
		if refs[j] == "" {
			continue
		}
		err := m.dereference(refs, j, func(id string) (int, bool) {
			ti, ok := m.sim[id]
			if !ok {
				return 0, false
			}
			return m.isc[ti], true
		})
		if err != nil {
			return err
		}
	}

	// Dereference line parameter references, position by position: the
	// j-th parameter of an aliased line refers to the j-th parameter
	// of its target.
	for _, pi := range m.pim {
		for o := 0; o < m.factory.ParameterCount; o++ {
			j := pi + o
			if refs[j] == "" {
				continue
			}
			offset := o
			err := m.dereference(refs, j, func(id string) (int, bool) {
				ti, ok := m.pim[id]
				if !ok {
					return 0, false
				}
				return ti + offset, true
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// dereference follows the alias chain starting at position j until a
// concrete target is found, and copies the target's state. Unresolved
// identifiers and cyclic chains are fatal.
func (m *Model) dereference(refs []string, j int, lookup func(id string) (int, bool)) error {
	seen := make(map[string]bool)

	id := refs[j]
	for {
		if seen[id] {
			return &ParseError{ID: id, Reason: "self reference"}
		}
		seen[id] = true

		t, ok := lookup(id)
		if !ok {
			return &ParseError{ID: id, Reason: "reference not found"}
		}
		if t == j {
			return &ParseError{ID: id, Reason: "self reference"}
		}
		if refs[t] == "" {
			m.copyParameter(j, t)
			return nil
		}
		id = refs[t]
	}
}

func (m *Model) copyParameter(dst, src int) {
	m.val[dst] = m.val[src]
	m.lo[dst] = m.lo[src]
	m.up[dst] = m.up[src]
	m.msk[dst] = m.msk[src]
	m.ind[dst] = m.ind[src]
}
