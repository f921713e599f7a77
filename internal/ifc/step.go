package ifc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Write serializes the document as an ISO-10303-21 physical file with an
// IFC4 schema header.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	ts := f.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	authority := f.Authority
	if authority == "" {
		authority = "elca2ifc"
	}

	fmt.Fprintf(bw, "ISO-10303-21;\nHEADER;\n")
	fmt.Fprintf(bw, "FILE_DESCRIPTION(('ViewDefinition [ReferenceView]'),'2;1');\n")
	fmt.Fprintf(bw, "FILE_NAME(%s,%s,(''),(''),%s,%s,'');\n",
		quote(f.Name), quote(ts.Format("2006-01-02T15:04:05")), quote(authority), quote(authority))
	fmt.Fprintf(bw, "FILE_SCHEMA(('IFC4'));\nENDSEC;\nDATA;\n")

	for _, e := range f.entities {
		fmt.Fprintf(bw, "#%d=%s(", e.ID, e.Type)
		for i, attr := range e.Attrs {
			if i > 0 {
				bw.WriteByte(',')
			}
			writeValue(bw, attr)
		}
		bw.WriteString(");\n")
	}

	fmt.Fprintf(bw, "ENDSEC;\nEND-ISO-10303-21;\n")
	return bw.Flush()
}

// WriteFile writes the document to path. Any failure here is fatal for the
// run: a partially written library must not be treated as valid, so the
// error carries the path and the caller aborts.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

func writeValue(bw *bufio.Writer, v any) {
	switch val := v.(type) {
	case nil:
		bw.WriteByte('$')
	case Derived:
		bw.WriteByte('*')
	case string:
		bw.WriteString(quote(val))
	case float64:
		bw.WriteString(formatReal(val))
	case int:
		bw.WriteString(strconv.Itoa(val))
	case bool:
		if val {
			bw.WriteString(".T.")
		} else {
			bw.WriteString(".F.")
		}
	case Enum:
		bw.WriteByte('.')
		bw.WriteString(string(val))
		bw.WriteByte('.')
	case *Entity:
		if val == nil {
			bw.WriteByte('$')
			return
		}
		fmt.Fprintf(bw, "#%d", val.ID)
	case List:
		bw.WriteByte('(')
		for i, item := range val {
			if i > 0 {
				bw.WriteByte(',')
			}
			writeValue(bw, item)
		}
		bw.WriteByte(')')
	default:
		// Unsupported kinds are a programming error in the builder.
		panic(fmt.Sprintf("ifc: unsupported attribute type %T", v))
	}
}

// quote renders a STEP string literal: quotes and backslashes doubled, and
// characters outside printable ASCII encoded as ISO 10303-21 \X2\..\X0\
// (Basic Multilingual Plane) or \X4\..\X0\ directives, which is what strict
// consumers expect instead of raw UTF-8.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'':
			b.WriteString("''")
		case r == '\\':
			b.WriteString(`\\`)
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\X2\%04X\X0\`, r)
		default:
			fmt.Fprintf(&b, `\X4\%08X\X0\`, r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// formatReal renders a float with a mandatory decimal point, as STEP
// requires for REAL values.
func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

// ref is the parse-time placeholder for a #id instance reference; it is
// replaced by the *Entity in a second pass so forward references work.
type ref struct{ id int }

// Read parses a STEP file previously produced by Write (or any file limited
// to the same value kinds) back into a File.
func Read(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read IFC document: %w", err)
	}

	text := string(raw)
	start := strings.Index(text, "DATA;")
	if start < 0 {
		return nil, fmt.Errorf("not a STEP physical file: DATA section missing")
	}

	f := &File{Name: headerName(text)}
	byID := make(map[int]*Entity)

	p := &stepParser{input: text, pos: start + len("DATA;")}
	for {
		p.skipSpace()
		if p.done() || p.peek() != '#' {
			break
		}
		e, err := p.parseInstance()
		if err != nil {
			return nil, err
		}
		f.entities = append(f.entities, e)
		byID[e.ID] = e
	}

	for _, e := range f.entities {
		if err := resolveRefs(e.Attrs, byID); err != nil {
			return nil, fmt.Errorf("instance #%d: %w", e.ID, err)
		}
	}

	return f, nil
}

// ReadFile opens and parses an IFC document.
func ReadFile(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("IFC file not found: %s: %w", path, err)
	}
	defer in.Close()
	return Read(in)
}

func resolveRefs(values []any, byID map[int]*Entity) error {
	for i, v := range values {
		switch val := v.(type) {
		case ref:
			target, ok := byID[val.id]
			if !ok {
				return fmt.Errorf("dangling instance reference #%d", val.id)
			}
			values[i] = target
		case List:
			if err := resolveRefs(val, byID); err != nil {
				return err
			}
		}
	}
	return nil
}

func headerName(text string) string {
	i := strings.Index(text, "FILE_NAME(")
	if i < 0 {
		return ""
	}
	rest := text[i+len("FILE_NAME("):]
	if !strings.HasPrefix(rest, "'") {
		return ""
	}
	if j := strings.Index(rest[1:], "'"); j >= 0 {
		return rest[1 : 1+j]
	}
	return ""
}

type stepParser struct {
	input string
	pos   int
}

func (p *stepParser) done() bool { return p.pos >= len(p.input) }

func (p *stepParser) peek() byte { return p.input[p.pos] }

func (p *stepParser) skipSpace() {
	for !p.done() {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// parseInstance parses one "#id=TYPE(...);" record.
func (p *stepParser) parseInstance() (*Entity, error) {
	p.pos++ // consume '#'
	id, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.done() || p.peek() != '=' {
		return nil, fmt.Errorf("instance #%d: expected '='", id)
	}
	p.pos++
	p.skipSpace()

	typeStart := p.pos
	for !p.done() && p.peek() != '(' {
		p.pos++
	}
	if p.done() {
		return nil, fmt.Errorf("instance #%d: truncated record", id)
	}
	entityType := strings.TrimSpace(p.input[typeStart:p.pos])

	attrs, err := p.parseAggregate()
	if err != nil {
		return nil, fmt.Errorf("instance #%d: %w", id, err)
	}

	p.skipSpace()
	if !p.done() && p.peek() == ';' {
		p.pos++
	}
	return &Entity{ID: id, Type: entityType, Attrs: attrs}, nil
}

// parseAggregate parses a parenthesized, comma-separated value list. The
// opening '(' is the current character.
func (p *stepParser) parseAggregate() ([]any, error) {
	p.pos++ // consume '('
	var values []any

	p.skipSpace()
	if !p.done() && p.peek() == ')' {
		p.pos++
		return values, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		p.skipSpace()
		if p.done() {
			return nil, fmt.Errorf("unterminated aggregate")
		}
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
		case ')':
			p.pos++
			return values, nil
		default:
			return nil, fmt.Errorf("unexpected character %q in aggregate", string(p.peek()))
		}
	}
}

func (p *stepParser) parseValue() (any, error) {
	p.skipSpace()
	if p.done() {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch c := p.peek(); {
	case c == '$':
		p.pos++
		return nil, nil
	case c == '*':
		p.pos++
		return Derived{}, nil
	case c == '#':
		p.pos++
		id, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return ref{id: id}, nil
	case c == '\'':
		return p.parseString()
	case c == '.':
		return p.parseEnum()
	case c == '(':
		items, err := p.parseAggregate()
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, fmt.Errorf("unexpected character %q", string(c))
	}
}

func (p *stepParser) parseInt() (int, error) {
	start := p.pos
	for !p.done() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected digits at offset %d", p.pos)
	}
	return strconv.Atoi(p.input[start:p.pos])
}

func (p *stepParser) parseNumber() (any, error) {
	start := p.pos
	isReal := false
	for !p.done() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '-' || c == '+' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isReal = true
			p.pos++
			continue
		}
		break
	}
	token := p.input[start:p.pos]
	if isReal {
		// "50." is a valid STEP real but not a valid Go float literal
		// suffix-wise; ParseFloat handles a trailing dot fine.
		v, err := strconv.ParseFloat(strings.TrimSuffix(token, "."), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q", token)
		}
		return v, nil
	}
	v, err := strconv.Atoi(token)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", token)
	}
	return v, nil
}

// parseString handles '' doubling, \\ and the \X2\..\X0\ / \X4\..\X0\
// codepoint directives quote emits.
func (p *stepParser) parseString() (string, error) {
	p.pos++ // consume opening quote
	var sb strings.Builder
	for !p.done() {
		c := p.input[p.pos]
		switch {
		case c == '\'':
			if p.pos+1 < len(p.input) && p.input[p.pos+1] == '\'' {
				sb.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		case c == '\\':
			if err := p.parseStringEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *stepParser) parseStringEscape(sb *strings.Builder) error {
	if p.pos+1 >= len(p.input) {
		return fmt.Errorf("unterminated string escape")
	}
	switch p.input[p.pos+1] {
	case '\\':
		sb.WriteByte('\\')
		p.pos += 2
		return nil
	case 'X':
		return p.parseCodepointDirective(sb)
	}
	return fmt.Errorf("unsupported string escape %q", p.input[p.pos:p.pos+2])
}

// parseCodepointDirective consumes \X2\ or \X4\, its fixed-width hex
// groups, and the closing \X0\.
func (p *stepParser) parseCodepointDirective(sb *strings.Builder) error {
	if p.pos+4 > len(p.input) || p.input[p.pos+3] != '\\' {
		return fmt.Errorf("malformed \\X directive")
	}
	var width int
	switch p.input[p.pos+2] {
	case '2':
		width = 4
	case '4':
		width = 8
	default:
		return fmt.Errorf("unsupported \\X%c\\ directive", p.input[p.pos+2])
	}
	p.pos += 4
	for {
		if strings.HasPrefix(p.input[p.pos:], `\X0\`) {
			p.pos += 4
			return nil
		}
		if p.pos+width > len(p.input) {
			return fmt.Errorf("unterminated \\X directive")
		}
		v, err := strconv.ParseUint(p.input[p.pos:p.pos+width], 16, 32)
		if err != nil {
			return fmt.Errorf("bad hex in \\X directive: %w", err)
		}
		sb.WriteRune(rune(v))
		p.pos += width
	}
}

// parseEnum handles .ENUM. literals including the boolean forms .T./.F.
func (p *stepParser) parseEnum() (any, error) {
	p.pos++ // consume opening dot
	start := p.pos
	for !p.done() && p.peek() != '.' {
		p.pos++
	}
	if p.done() {
		return nil, fmt.Errorf("unterminated enumeration literal")
	}
	token := p.input[start:p.pos]
	p.pos++ // consume closing dot
	switch token {
	case "T":
		return true, nil
	case "F":
		return false, nil
	}
	return Enum(token), nil
}
