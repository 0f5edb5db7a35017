// Copyright © 2018 The ELPS authors

// Package regexparser provides a parser for evaluator source text.
//
//	value    := <block> | <group> | <term>
//	block    := '[' <value>* ']'
//	group    := '(' <value>* ')'
//	term     := <string> | <logic> | <decimal> | <integer> | <set-word>
//	          | <path> | <refinement> | '/' | <get-word> | <lit-word> | <word>
//	string   := '"' /([^"\\]|\\.)*/ '"'
//	logic    := '#[true]' | '#[false]'
//	set-word := <word> ':'
//	get-word := ':' <word>
//	lit-word := "'" <word>
//	path     := <word> ('/' (<word> | <integer>))+
//	refinement := '/' <word>
//
// The words _ and | read as blank and the expression barrier.  Comments run
// from ; to the end of the line.  A value which is the first on its line
// carries the Line display hint.
package regexparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luthersystems/reval/eval"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns an eval.Reader.
func NewReader() eval.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) (*eval.Sequence, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	seq, _, err := ParseSequence(b)
	if err != nil {
		if serr, ok := err.(*SyntaxError); ok {
			serr.Source = name
		}
		return nil, err
	}
	return seq, nil
}

// ErrIncomplete is matched by a SyntaxError for text that ends inside a
// block, group or string.
var ErrIncomplete = fmt.Errorf("incomplete source text")

// SyntaxError reports source text which could not be parsed.
type SyntaxError struct {
	Source     string
	Line       int
	Message    string
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// Is allows errors.Is to match ErrIncomplete.
func (e *SyntaxError) Is(target error) bool {
	return e.Incomplete && target == ErrIncomplete
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeBlock
	nodeGroup
	nodeUnmatched
)

var nodeTypeStrings = []string{
	nodeInvalid:   "INVALID",
	nodeTerm:      "TERM",
	nodeBlock:     "BLOCK",
	nodeGroup:     "GROUP",
	nodeUnmatched: "UNMATCHED",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// ParseSequence parses the values in text and returns them.  The number of
// bytes read is returned along with any error that was encountered in
// parsing.
func ParseSequence(text []byte) (*eval.Sequence, int, error) {
	p := &textParser{text: text}
	seq := eval.MakeSequence(0)
	s := parsec.NewScanner(text)
	parser := p.newParsecParser()
	root, s := parser(s)
	for root != nil {
		nodes, err := cleanParsecNodeList([]parsec.ParsecNode{root})
		if err != nil {
			return seq, s.GetCursor(), err
		}
		for _, n := range nodes {
			if v, ok := n.(eval.Value); ok {
				seq.Append(v)
			}
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		cursor := s.GetCursor()
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		return seq, cursor, &SyntaxError{
			Line:       p.lineAt(cursor),
			Message:    fmt.Sprintf("unexpected source text possibly starting: %s", b),
			Incomplete: strings.HasPrefix(string(b), `"`),
		}
	}
	return seq, s.GetCursor(), nil
}

const wordPattern = `[\pL\-+*=<>!?&~%.][\pL0-9\-+*=<>!?&~%._]*`

// textParser builds values from the terminals of a single text.
type textParser struct {
	text []byte
}

func (p *textParser) newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	openB := parsec.Atom("[", "OPENB")
	closeB := parsec.Atom("]", "CLOSEB")
	comment := parsec.Token(`;[^\n]*`, "COMMENT")
	str := parsec.Token(`"(?:[^"\\\n]|\\.)*"`, "STRING")
	logic := parsec.Token(`#\[(?:true|false)\]`, "LOGIC")
	decimal := parsec.Token(`[+-]?[0-9]+[.][0-9]+(?:[eE][+-]?[0-9]+)?`, "DECIMAL")
	integer := parsec.Token(`[+-]?[0-9]+`, "INTEGER")
	setWord := parsec.Token(wordPattern+`:`, "SETWORD")
	path := parsec.Token(wordPattern+`(?:/(?:`+wordPattern+`|[0-9]+))+`, "PATH")
	refinement := parsec.Token(`/`+wordPattern, "REFINEMENT")
	slash := parsec.Atom("/", "SLASH")
	getWord := parsec.Token(`:`+wordPattern, "GETWORD")
	litWord := parsec.Token(`'`+wordPattern, "LITWORD")
	word := parsec.Token(wordPattern, "WORD")
	bar := parsec.Atom("|", "BAR")
	blank := parsec.Atom("_", "BLANK")
	term := parsec.OrdChoice(p.astNode(nodeTerm),
		str,
		logic,
		decimal,
		integer,
		setWord,
		path,
		refinement,
		slash,
		getWord,
		litWord,
		word,
		bar,
		blank,
	)
	var value parsec.Parser // forward declaration allows for recursive parsing
	items := parsec.Kleene(nil, &value)
	block := parsec.And(p.astNode(nodeBlock), openB, items, closeB)
	group := parsec.And(p.astNode(nodeGroup), openP, items, closeP)
	blockUnmatched := parsec.And(p.astNode(nodeUnmatched), openB, items, parsec.End())
	groupUnmatched := parsec.And(p.astNode(nodeUnmatched), openP, items, parsec.End())
	value = parsec.OrdChoice(nil,
		comment,
		term,
		block,
		group,
		// Error matching cases come last because they have the lowest
		// precedence.
		blockUnmatched,
		groupUnmatched,
	)
	return value
}

func (p *textParser) astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return p.newNode(t, nodes)
	}
}

func (p *textParser) newNode(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	switch typ {
	case nodeTerm:
		term, ok := nodes[0].(*parsec.Terminal)
		if !ok {
			return fmt.Errorf("unexpected term node: %T", nodes[0])
		}
		v, err := p.termValue(term)
		if err != nil {
			return err
		}
		return v
	case nodeBlock, nodeGroup:
		open := nodes[0].(*parsec.Terminal)
		children, err := cleanParsecNodeList(nodes[1 : len(nodes)-1])
		if err != nil {
			return err
		}
		seq := eval.MakeSequence(len(children))
		for _, c := range children {
			if v, ok := c.(eval.Value); ok {
				seq.Append(v)
			}
		}
		v := eval.Block(seq)
		if typ == nodeGroup {
			v = eval.Group(seq)
		}
		v.Line = p.startsLine(open.Position)
		return v
	case nodeUnmatched:
		open := nodes[0].(*parsec.Terminal)
		return &SyntaxError{
			Line:       p.lineAt(open.Position),
			Message:    fmt.Sprintf("unmatched %q", open.GetValue()),
			Incomplete: true,
		}
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func (p *textParser) termValue(term *parsec.Terminal) (eval.Value, error) {
	text := term.GetValue()
	var v eval.Value
	switch term.GetName() {
	case "STRING":
		s, err := strconv.Unquote(text)
		if err != nil {
			return eval.End(), &SyntaxError{
				Line:    p.lineAt(term.Position),
				Message: fmt.Sprintf("bad string: %v (%s)", err, text),
			}
		}
		v = eval.String(s)
	case "LOGIC":
		v = eval.Logic(text == "#[true]")
	case "DECIMAL":
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return eval.End(), &SyntaxError{
				Line:    p.lineAt(term.Position),
				Message: fmt.Sprintf("bad number: %v (%s)", err, text),
			}
		}
		v = eval.Decimal(x)
	case "INTEGER":
		x, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return eval.End(), &SyntaxError{
				Line:    p.lineAt(term.Position),
				Message: fmt.Sprintf("bad number: %v (%s)", err, text),
			}
		}
		v = eval.Integer(x)
	case "SETWORD":
		v = eval.SetWord(strings.TrimSuffix(text, ":"))
	case "GETWORD":
		v = eval.GetWord(text[1:])
	case "LITWORD":
		v = eval.LitWord(text[1:])
	case "PATH":
		segs := strings.Split(text, "/")
		vals := make([]eval.Value, len(segs))
		for i, seg := range segs {
			if x, err := strconv.ParseInt(seg, 10, 64); err == nil {
				vals[i] = eval.Integer(x)
			} else {
				vals[i] = eval.Word(seg)
			}
		}
		v = eval.Path(vals...)
	case "REFINEMENT":
		v = eval.Refinement(text[1:])
	case "SLASH":
		v = eval.Slash()
	case "BAR":
		v = eval.Bar()
	case "BLANK":
		v = eval.Blank()
	case "WORD":
		v = eval.Word(text)
	default:
		return eval.End(), fmt.Errorf("unknown terminal: %s", term.GetName())
	}
	v.Line = p.startsLine(term.Position)
	return v, nil
}

// startsLine returns true if only whitespace separates pos from the
// preceding newline.  The first value of the text does not start a line.
func (p *textParser) startsLine(pos int) bool {
	for i := pos - 1; i >= 0 && i < len(p.text); i-- {
		switch p.text[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return false
}

func (p *textParser) lineAt(pos int) int {
	if pos > len(p.text) {
		pos = len(p.text)
	}
	return 1 + strings.Count(string(p.text[:pos]), "\n")
}

// cleanParsecNodeList flattens lis, dropping comments.  The first error
// node encountered is returned as an error.
func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, error) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case error:
			return nil, node
		case []parsec.ParsecNode:
			clean, err := cleanParsecNodeList(node)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, clean...)
		case nil:
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}
