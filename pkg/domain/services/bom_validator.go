package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles         bool
	CyclePaths        [][]entities.ItemCode
	SelfEdges         []entities.BOMEdgeView
	DanglingDilutions []entities.BOMEdgeView
	DuplicateLines    []entities.BOMEdgeView
	Errors            []string
	Warnings          []string
}

// IsValid reports whether planning can safely run over the validated edges
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateBOM checks a set of BOM edges for cycles, self-consumption, duplicate
// lines and dilution lines without a main ingredient. Dilution lines contribute
// a main -> diluent arc to cycle detection.
func ValidateBOM(edges []entities.BOMEdgeView) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:        make([][]entities.ItemCode, 0),
		SelfEdges:         make([]entities.BOMEdgeView, 0),
		DanglingDilutions: make([]entities.BOMEdgeView, 0),
		DuplicateLines:    make([]entities.BOMEdgeView, 0),
		Errors:            make([]string, 0),
		Warnings:          make([]string, 0),
	}

	for _, edge := range edges {
		if edge.ParentCode == edge.ChildCode {
			result.SelfEdges = append(result.SelfEdges, edge)
		}
		if edge.IsDilution && edge.DilutionMainCode == "" {
			result.DanglingDilutions = append(result.DanglingDilutions, edge)
		}
	}

	cycles := detectCycles(buildAdjacencyMap(edges))
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles
	result.DuplicateLines = detectDuplicateLines(edges)

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	for _, edge := range result.SelfEdges {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM line %d consumes its own parent %s", edge.ID, edge.ParentCode))
	}
	for _, edge := range result.DanglingDilutions {
		result.Warnings = append(result.Warnings, fmt.Sprintf("dilution line %d (%s -> %s) has no main ingredient and is ignored by planning", edge.ID, edge.ParentCode, edge.ChildCode))
	}
	if len(result.DuplicateLines) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Found %d duplicate BOM lines", len(result.DuplicateLines)))
	}

	return result
}

// buildAdjacencyMap creates a map of consumer -> consumed relationships
func buildAdjacencyMap(edges []entities.BOMEdgeView) map[entities.ItemCode][]entities.ItemCode {
	adjacencyMap := make(map[entities.ItemCode][]entities.ItemCode)

	addArc := func(from, to entities.ItemCode) {
		for _, existing := range adjacencyMap[from] {
			if existing == to {
				return
			}
		}
		adjacencyMap[from] = append(adjacencyMap[from], to)
	}

	for _, edge := range edges {
		if edge.IsDilution {
			if edge.DilutionMainCode != "" {
				addArc(edge.DilutionMainCode, edge.ChildCode)
			}
			continue
		}
		addArc(edge.ParentCode, edge.ChildCode)
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the consumption graph
func detectCycles(adjacencyMap map[entities.ItemCode][]entities.ItemCode) [][]entities.ItemCode {
	visited := make(map[entities.ItemCode]bool)
	recursionStack := make(map[entities.ItemCode]bool)
	cycles := make([][]entities.ItemCode, 0)

	roots := make([]entities.ItemCode, 0, len(adjacencyMap))
	for parent := range adjacencyMap {
		roots = append(roots, parent)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	for _, parent := range roots {
		if !visited[parent] {
			dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle performs depth-first search to detect cycles
func dfsDetectCycle(
	current entities.ItemCode,
	adjacencyMap map[entities.ItemCode][]entities.ItemCode,
	visited map[entities.ItemCode]bool,
	recursionStack map[entities.ItemCode]bool,
	path []entities.ItemCode,
	cycles *[][]entities.ItemCode,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[child] {
			continue
		}
		for i, part := range path {
			if part == child {
				cycle := make([]entities.ItemCode, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateLines finds lines sharing parent, child, kind and main ingredient
func detectDuplicateLines(edges []entities.BOMEdgeView) []entities.BOMEdgeView {
	seen := make(map[string]entities.BOMEdgeView)
	duplicates := make([]entities.BOMEdgeView, 0)

	for _, edge := range edges {
		key := fmt.Sprintf("%s|%s|%t|%s", edge.ParentCode, edge.ChildCode, edge.IsDilution, edge.DilutionMainCode)
		if existing, exists := seen[key]; exists {
			duplicates = append(duplicates, edge, existing)
		} else {
			seen[key] = edge
		}
	}

	return duplicates
}
