package planning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// Explosion holds the gross requirement entries produced by one explosion,
// keyed by item code, plus the order in which codes were first reached
type Explosion struct {
	Requirements map[entities.ItemCode][]entities.RequirementEntry
	Order        []entities.ItemCode
}

func newExplosion() *Explosion {
	return &Explosion{
		Requirements: make(map[entities.ItemCode][]entities.RequirementEntry),
	}
}

func (x *Explosion) add(code entities.ItemCode, entry entities.RequirementEntry) {
	if _, seen := x.Requirements[code]; !seen {
		x.Order = append(x.Order, code)
	}
	x.Requirements[code] = append(x.Requirements[code], entry)
}

// ExplosionEngine walks the BOM and dilution graphs depth-first from top-level demand
type ExplosionEngine struct {
	bomMap      entities.BOMMap
	dilutionMap entities.DilutionMap
	maxDepth    int
}

// NewExplosionEngine creates an engine over loaded graphs. maxDepth bounds the
// explosion depth; zero leaves only the per-path cycle check.
func NewExplosionEngine(bomMap entities.BOMMap, dilutionMap entities.DilutionMap, maxDepth int) *ExplosionEngine {
	return &ExplosionEngine{
		bomMap:      bomMap,
		dilutionMap: dilutionMap,
		maxDepth:    maxDepth,
	}
}

// node is one pending requirement on the explicit traversal stack
type node struct {
	code   entities.ItemCode
	qty    decimal.Decimal
	due    *time.Time
	parent *node
	depth  int
}

func (n *node) onPath(code entities.ItemCode) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.code == code {
			return true
		}
	}
	return false
}

func (n *node) path() []entities.ItemCode {
	var path []entities.ItemCode
	for p := n; p != nil; p = p.parent {
		path = append(path, p.code)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (n *node) trace() string {
	path := n.path()
	parts := make([]string, len(path))
	for i, code := range path {
		parts[i] = string(code)
	}
	return strings.Join(parts, " > ")
}

// Explode produces requirement entries for every demand line. Each path through
// the graph contributes its own entry; entries for the same code accumulate.
func (e *ExplosionEngine) Explode(ctx context.Context, demand []entities.DemandLine) (*Explosion, error) {
	result := newExplosion()
	for _, line := range demand {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root := &node{code: line.Code, qty: line.EffectiveQty, due: line.DueDate}
		if err := e.walk(result, root); err != nil {
			return nil, fmt.Errorf("failed to explode demand for %s: %w", line.Code, err)
		}
	}
	return result, nil
}

// walk registers the root requirement and everything it consumes. For every
// node, dilution lines it is the main ingredient of are expanded before its
// normal BOM children, each fully, in stored order.
func (e *ExplosionEngine) walk(result *Explosion, root *node) error {
	stack := []*node{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.onPath(current.code) {
			return &entities.CycleError{Path: current.path()}
		}
		if e.maxDepth > 0 && current.depth > e.maxDepth {
			return fmt.Errorf("%w: depth limit %d exceeded at %s", entities.ErrCycleDetected, e.maxDepth, current.trace())
		}

		result.add(current.code, entities.RequirementEntry{
			Quantity:    current.qty,
			DueDate:     current.due,
			DemandTrace: current.trace(),
		})

		children := e.bomMap[current.code]
		for i := len(children) - 1; i >= 0; i-- {
			line := children[i]
			stack = append(stack, &node{
				code:   line.Child,
				qty:    current.qty.Mul(line.Quantity),
				due:    current.due,
				parent: current,
				depth:  current.depth + 1,
			})
		}

		diluents := e.dilutionMap[current.code]
		for i := len(diluents) - 1; i >= 0; i-- {
			line := diluents[i]
			need := current.qty.Mul(line.PerMainQty)
			if !need.IsPositive() {
				continue
			}
			stack = append(stack, &node{
				code:   line.Child,
				qty:    need,
				due:    current.due,
				parent: current,
				depth:  current.depth + 1,
			})
		}
	}

	return nil
}
