package expression

import (
	"fmt"
	"strings"
)

type node interface {
	String() string
}

// numberNode is a real literal. The text is kept so big precision evaluation can parse it
// without going through float64.
type numberNode struct {
	text  string
	value float64
}

type constantNode struct {
	name string
}

type variableNode struct {
	name string
}

type negateNode struct {
	operand node
}

type binaryNode struct {
	op    tokenType
	left  node
	right node
}

type callNode struct {
	fn   *function
	args []node
}

func (n *numberNode) String() string   { return n.text }
func (n *constantNode) String() string { return n.name }
func (n *variableNode) String() string { return n.name }
func (n *negateNode) String() string   { return fmt.Sprintf("(-%s)", n.operand) }

func (n *binaryNode) String() string {
	op := map[tokenType]string{tokPlus: "+", tokMinus: "-", tokStar: "*", tokSlash: "/", tokCaret: "^"}[n.op]
	return fmt.Sprintf("(%s %s %s)", n.left, op, n.right)
}

func (n *callNode) String() string {
	args := make([]string, len(n.args))
	for i, arg := range n.args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.fn.name, strings.Join(args, ", "))
}
