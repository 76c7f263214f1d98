package csv

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// GenerateConfig holds configuration for synthetic scenario generation
type GenerateConfig struct {
	Items        int     // Total number of blend and raw items to generate
	MaxDepth     int     // Maximum depth of the BOM tree
	Orders       int     // Number of open production orders
	Inventory    float64 // Stock multiplier against one batch of every root (0.5 = half coverage)
	DilutionRate float64 // Chance that a consumed intermediate also gets a diluent line
	Seed         int64   // Random seed for reproducible generation
}

// diluents are shared by every generated dilution line
var diluents = []entities.ItemCode{"WATER", "SOLVENT"}

type blendNode struct {
	code     entities.ItemCode
	level    int
	children []*blendNode
	parents  []*blendNode
	qty      decimal.Decimal
	isRoot   bool
}

// Generator builds random but acyclic blending scenarios
type Generator struct {
	config GenerateConfig
	rand   *rand.Rand
	base   time.Time
}

// NewGenerator creates a generator. A zero seed uses the current time.
func NewGenerator(config GenerateConfig) *Generator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.MaxDepth < 1 {
		config.MaxDepth = 1
	}

	return &Generator{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		base:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate returns a complete scenario. The same seed always yields the same scenario.
func (g *Generator) Generate() (*Scenario, error) {
	if g.config.Items < 1 {
		return nil, fmt.Errorf("%w: at least one item is required", entities.ErrInvalidArgument)
	}

	nodes := g.generateTree()
	codes := make([]entities.ItemCode, 0, len(nodes))
	for code := range nodes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	s := &Scenario{}
	for _, diluent := range diluents {
		item, err := entities.NewItem(diluent, "", "kg", 1, decimal.Zero)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}

	for _, code := range codes {
		node := nodes[code]
		item, err := entities.NewItem(code, g.describe(node), "kg", g.leadTime(node), g.batchSize())
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)

		for _, child := range node.children {
			s.BOM = append(s.BOM, BOMRow{Parent: code, Child: child.code, Qty: child.qty})
			if len(child.children) > 0 && g.rand.Float64() < g.config.DilutionRate {
				s.BOM = append(s.BOM, BOMRow{
					Parent:       code,
					Child:        diluents[g.rand.Intn(len(diluents))],
					IsDilution:   true,
					PerMainQty:   decimal.NewNullDecimal(decimal.New(int64(5+g.rand.Intn(35)), -1)),
					DilutionMain: child.code,
				})
			}
		}
	}

	g.generateOrders(s, nodes, codes)
	g.generateInventory(s, nodes, codes)
	return s, nil
}

// generateTree creates a layered BOM with shared intermediates
func (g *Generator) generateTree() map[entities.ItemCode]*blendNode {
	nodes := make(map[entities.ItemCode]*blendNode)

	numRoots := max(1, g.config.Items/50+g.rand.Intn(3))
	numRoots = min(numRoots, g.config.Items)
	var roots []*blendNode
	for i := 0; i < numRoots; i++ {
		node := &blendNode{code: entities.ItemCode(fmt.Sprintf("BLEND_%03d", i+1)), isRoot: true}
		nodes[node.code] = node
		roots = append(roots, node)
	}

	generated := numRoots
	currentLevel := roots
	level := 0

	for level < g.config.MaxDepth && generated < g.config.Items {
		level++
		var nextLevel []*blendNode

		for _, parent := range currentLevel {
			numChildren := 2 + g.rand.Intn(4)
			for i := 0; i < numChildren && generated < g.config.Items; i++ {
				var child *blendNode
				if level > 1 && g.rand.Float64() < 0.2 {
					if candidates := g.shareable(nodes, level, parent); len(candidates) > 0 {
						child = candidates[g.rand.Intn(len(candidates))]
					}
				}
				if child == nil {
					child = &blendNode{code: entities.ItemCode(fmt.Sprintf("INT_L%d_%04d", level, generated)), level: level}
					nodes[child.code] = child
					nextLevel = append(nextLevel, child)
					generated++
				}

				parent.children = append(parent.children, child)
				child.parents = append(child.parents, parent)
				child.qty = decimal.New(int64(5+g.rand.Intn(96)), -2)
			}
		}

		if len(nextLevel) == 0 {
			break
		}
		currentLevel = nextLevel
	}

	for generated < g.config.Items {
		node := &blendNode{code: entities.ItemCode(fmt.Sprintf("RAW_%04d", generated)), level: level + 1}
		nodes[node.code] = node
		parent := currentLevel[g.rand.Intn(len(currentLevel))]
		parent.children = append(parent.children, node)
		node.parents = append(node.parents, parent)
		node.qty = decimal.New(int64(5+g.rand.Intn(96)), -2)
		generated++
	}

	return nodes
}

// shareable lists existing nodes that parent may consume without closing a cycle
func (g *Generator) shareable(nodes map[entities.ItemCode]*blendNode, level int, parent *blendNode) []*blendNode {
	var candidates []*blendNode
	for _, node := range nodes {
		if node.isRoot || node == parent || node.level < level-1 || len(node.parents) >= 3 {
			continue
		}
		if !isAncestor(node, parent) {
			candidates = append(candidates, node)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].code < candidates[j].code })
	return candidates
}

// isAncestor reports whether candidate consumes node, directly or through other nodes
func isAncestor(candidate, node *blendNode) bool {
	visited := make(map[entities.ItemCode]bool)
	stack := []*blendNode{node}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, parent := range current.parents {
			if parent == candidate {
				return true
			}
			if !visited[parent.code] {
				visited[parent.code] = true
				stack = append(stack, parent)
			}
		}
	}
	return false
}

func (g *Generator) describe(node *blendNode) string {
	switch {
	case node.isRoot:
		return fmt.Sprintf("%s finished blend", node.code)
	case len(node.children) > 0:
		return fmt.Sprintf("%s intermediate", node.code)
	default:
		return fmt.Sprintf("%s raw material", node.code)
	}
}

// leadTime grows toward raw materials, which are bought rather than blended
func (g *Generator) leadTime(node *blendNode) int {
	switch {
	case node.isRoot:
		return g.rand.Intn(3)
	case len(node.children) > 0:
		return 2 + g.rand.Intn(8)
	default:
		return 7 + g.rand.Intn(38)
	}
}

// batchSize leaves roughly a fifth of items empty so the default of 25 applies
func (g *Generator) batchSize() decimal.Decimal {
	if g.rand.Float64() < 0.2 {
		return decimal.Zero
	}
	sizes := []int64{10, 25, 50, 100, 250}
	return decimal.NewFromInt(sizes[g.rand.Intn(len(sizes))])
}

func (g *Generator) generateOrders(s *Scenario, nodes map[entities.ItemCode]*blendNode, codes []entities.ItemCode) {
	var roots []entities.ItemCode
	for _, code := range codes {
		if nodes[code].isRoot {
			roots = append(roots, code)
		}
	}

	for i := 0; i < g.config.Orders; i++ {
		due := g.base.AddDate(0, 0, g.rand.Intn(90))
		s.ProductionOrders = append(s.ProductionOrders, OrderRow{
			Code: roots[g.rand.Intn(len(roots))],
			Qty:  decimal.NewFromInt(int64(10 + g.rand.Intn(191))),
			Date: &due,
		})
	}

	for _, code := range codes {
		if len(nodes[code].children) == 0 && g.rand.Float64() < 0.3 {
			eta := g.base.AddDate(0, 0, g.rand.Intn(30))
			s.PurchaseOrders = append(s.PurchaseOrders, OrderRow{
				Code: code,
				Qty:  decimal.NewFromInt(int64(50 + g.rand.Intn(451))),
				Date: &eta,
			})
		}
	}
}

// generateInventory stocks every item against one batch of every root, scaled by the multiplier
func (g *Generator) generateInventory(s *Scenario, nodes map[entities.ItemCode]*blendNode, codes []entities.ItemCode) {
	if g.config.Inventory <= 0 {
		return
	}

	needs := make(map[entities.ItemCode]decimal.Decimal)
	for _, code := range codes {
		if nodes[code].isRoot {
			explode(nodes[code], entities.DefaultBatchSize, needs)
		}
	}

	locations := []string{"Main", "Tank Farm", "Warehouse 2"}
	multiplier := decimal.NewFromFloat(g.config.Inventory)
	for _, code := range codes {
		need, ok := needs[code]
		if !ok || nodes[code].isRoot {
			continue
		}
		qty := need.Mul(multiplier).Round(2)
		if !qty.IsPositive() {
			continue
		}
		s.Inventory = append(s.Inventory, InventoryRow{
			Code:     code,
			Location: locations[g.rand.Intn(len(locations))],
			Qty:      qty,
		})
	}
}

// explode accumulates gross needs below node for qty units of it
func explode(node *blendNode, qty decimal.Decimal, needs map[entities.ItemCode]decimal.Decimal) {
	needs[node.code] = needs[node.code].Add(qty)
	for _, child := range node.children {
		explode(child, qty.Mul(child.qty), needs)
	}
}
