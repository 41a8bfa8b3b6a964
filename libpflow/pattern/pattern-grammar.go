package pattern

import (
	"strconv"
	"strings"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PatternExpr is the parse tree of a pattern's text form:
//
//	classical [4,5]
//	out [2]
//	N(0) N(1) N(2) E(0,1) E(1,2)
//	M(0, XY, 1/4) M(1, XY, 0, s=[0])
//	X(2,[1]) Z(2,[0]) C(2, H)
type PatternExpr struct {
	Classical *DomainExpr `( "classical" @@ )?`
	Outputs   *DomainExpr `( "out" @@ )?`
	Cmds      []*CmdExpr  `@@*`
}

type CmdExpr struct {
	Op   string     `@Ident "("`
	Node string     `@Number`
	Args []*ArgExpr `( "," @@ )* ")"`
}

type ArgExpr struct {
	Keyed  *KeyedDomain `  @@`
	Domain *DomainExpr  `| @@`
	Word   string       `| @Ident`
	Number string       `| @Number`
}

type KeyedDomain struct {
	Key    string      `@DomainKey`
	Domain *DomainExpr `@@`
}

type DomainExpr struct {
	Open string   `@"["`
	IDs  []string `( @Number ( "," @Number )* )? "]"`
}

var sPatternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "DomainKey", Pattern: `[st]\s*=`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?(/[0-9]+)?`},
	{Name: "Punct", Pattern: `[()\[\],]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sParsePatternExpr = participle.MustBuild[PatternExpr](
	participle.Lexer(sPatternLexer),
	participle.Elide("Whitespace", "Comment"),
)

// Parse reads a pattern in the text form written by Pattern.String.
//
// Syntax errors wrap ErrBadEncoding; structural violations wrap ErrMalformedPattern or ErrInvalidMeasurement.
func Parse(patternExpr string) (*Pattern, error) {
	expr, err := sParsePatternExpr.ParseString("", patternExpr)
	if err != nil {
		return nil, errors.Wrap(pflow.ErrBadEncoding, err.Error())
	}

	b := NewBuilder()
	if expr.Classical != nil {
		ids, err := expr.Classical.nodes()
		if err != nil {
			return nil, err
		}
		b.Classical(ids...)
	}
	if expr.Outputs != nil {
		ids, err := expr.Outputs.nodes()
		if err != nil {
			return nil, err
		}
		b.Outputs(ids...)
	}
	for _, cmdExpr := range expr.Cmds {
		cmd, err := cmdExpr.toCommand()
		if err != nil {
			return nil, err
		}
		if err = b.Add(cmd); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func parseNodeID(str string) (pflow.NodeID, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(str, "+"))
	if err != nil {
		return 0, errors.Wrapf(pflow.ErrBadEncoding, "bad node id %q", str)
	}
	return pflow.NodeID(id), nil
}

func (expr *DomainExpr) nodes() ([]pflow.NodeID, error) {
	ids := make([]pflow.NodeID, 0, len(expr.IDs))
	for _, str := range expr.IDs {
		id, err := parseNodeID(str)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (expr *DomainExpr) domain() (Domain, error) {
	if expr == nil {
		return Domain{}, nil
	}
	ids, err := expr.nodes()
	if err != nil {
		return Domain{}, err
	}
	seen := make(map[pflow.NodeID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return Domain{}, errors.Wrapf(pflow.ErrBadEncoding, "node %d repeated in domain", id)
		}
		seen[id] = true
	}
	return NewDomain(ids...), nil
}

func (expr *CmdExpr) toCommand() (Command, error) {
	node, err := parseNodeID(expr.Node)
	if err != nil {
		return nil, err
	}
	args := expr.Args
	bad := func(what string) error {
		return errors.Wrapf(pflow.ErrBadEncoding, "%s(%d): %s", expr.Op, node, what)
	}

	switch expr.Op {
	case "N":
		if len(args) != 0 {
			return nil, bad("unexpected args")
		}
		return N{Node: node}, nil

	case "E":
		if len(args) != 1 || args[0].Number == "" {
			return nil, bad("expected one peer node")
		}
		peer, err := parseNodeID(args[0].Number)
		if err != nil {
			return nil, err
		}
		return E{A: node, B: peer}, nil

	case "M":
		if len(args) < 2 || args[0].Word == "" || args[1].Number == "" {
			return nil, bad("expected plane and angle")
		}
		plane, err := ParsePlane(strings.ToUpper(args[0].Word))
		if err != nil {
			return nil, err
		}
		angle, err := ParseAngle(args[1].Number)
		if err != nil {
			return nil, err
		}
		cmd := M{
			Node:        node,
			Measurement: Measurement{Plane: plane, Angle: angle},
		}
		for i, arg := range args[2:] {
			var key string
			var dom *DomainExpr
			switch {
			case arg.Keyed != nil:
				key = strings.TrimSpace(strings.TrimSuffix(arg.Keyed.Key, "="))
				dom = arg.Keyed.Domain
			case arg.Domain != nil && i < 2:
				key = [2]string{"s", "t"}[i]
				dom = arg.Domain
			default:
				return nil, bad("unexpected measurement arg")
			}
			d, err := dom.domain()
			if err != nil {
				return nil, err
			}
			if key == "s" {
				cmd.S = cmd.S.SymDiff(d)
			} else {
				cmd.T = cmd.T.SymDiff(d)
			}
		}
		return cmd, nil

	case "X", "Z":
		var dom Domain
		switch {
		case len(args) == 0:
		case len(args) == 1 && args[0].Domain != nil:
			if dom, err = args[0].Domain.domain(); err != nil {
				return nil, err
			}
		default:
			return nil, bad("expected a domain")
		}
		if expr.Op == "X" {
			return X(node, dom), nil
		}
		return Z(node, dom), nil

	case "C":
		if len(args) != 1 {
			return nil, bad("expected a clifford")
		}
		name := args[0].Word
		if name == "" {
			name = "C" + args[0].Number
		}
		op, ok := clifford.ByName(name)
		if !ok {
			return nil, bad("unknown clifford " + name)
		}
		return C{Node: node, Clifford: op}, nil
	}

	return nil, bad("unknown command")
}
