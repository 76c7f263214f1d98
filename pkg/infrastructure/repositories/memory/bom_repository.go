package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// AddBOMEdge adds a BOM line, resolving parent, child and dilution main by code
func (s *Store) AddBOMEdge(ctx context.Context, input entities.BOMEdgeInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	edge, err := st.newEdge(input)
	if err != nil {
		return 0, err
	}

	st.nextEdgeID++
	edge.ID = st.nextEdgeID
	st.edges[edge.ID] = *edge
	return edge.ID, nil
}

// UpdateBOMEdge applies the non-nil fields of update to an existing line
func (s *Store) UpdateBOMEdge(ctx context.Context, id int64, update entities.BOMEdgeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	current, ok := st.edges[id]
	if !ok {
		return fmt.Errorf("%w: bom line %d", entities.ErrNotFound, id)
	}

	input := st.inputOf(current)
	applyUpdate(&input, update)

	edge, err := st.newEdge(input)
	if err != nil {
		return err
	}
	edge.ID = id
	st.edges[id] = *edge
	return nil
}

// DeleteBOMEdge removes a BOM line
func (s *Store) DeleteBOMEdge(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.edges[id]; !ok {
		return fmt.Errorf("%w: bom line %d", entities.ErrNotFound, id)
	}
	delete(s.state.edges, id)
	return nil
}

// ListBOMEdges returns every BOM line resolved to item codes
func (s *Store) ListBOMEdges(ctx context.Context) ([]entities.BOMEdgeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListBOMEdges(ctx)
}

// ListBOMEdgesForParent returns the lines whose nominal parent is code
func (s *Store) ListBOMEdgesForParent(ctx context.Context, parent entities.ItemCode) ([]entities.BOMEdgeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	parentID, err := st.resolve(parent)
	if err != nil {
		return nil, err
	}

	views := make([]entities.BOMEdgeView, 0)
	for _, edge := range valuesByKey(st.edges) {
		if edge.ParentID == parentID {
			views = append(views, st.view(edge))
		}
	}
	return views, nil
}

// ListBOMEdges implements repositories.PlanningRepository for snapshot reads
func (st *state) ListBOMEdges(ctx context.Context) ([]entities.BOMEdgeView, error) {
	edges := valuesByKey(st.edges)
	views := make([]entities.BOMEdgeView, 0, len(edges))
	for _, edge := range edges {
		views = append(views, st.view(edge))
	}
	return views, nil
}

func (st *state) newEdge(input entities.BOMEdgeInput) (*entities.BOMEdge, error) {
	parentID, err := st.resolve(input.Parent)
	if err != nil {
		return nil, err
	}
	childID, err := st.resolve(input.Child)
	if err != nil {
		return nil, err
	}

	var mainID *entities.ItemID
	if input.DilutionMain != "" {
		id, err := st.resolve(input.DilutionMain)
		if err != nil {
			return nil, err
		}
		mainID = &id
	}

	return entities.NewBOMEdge(parentID, childID, input.QtyPer, input.IsDilution, input.PerMainQty, mainID)
}

func (st *state) inputOf(edge entities.BOMEdge) entities.BOMEdgeInput {
	input := entities.BOMEdgeInput{
		Parent:     st.codeOf(edge.ParentID),
		Child:      st.codeOf(edge.ChildID),
		QtyPer:     edge.QtyPer,
		IsDilution: edge.IsDilution,
		PerMainQty: edge.PerMainQty,
	}
	if edge.DilutionMainID != nil {
		input.DilutionMain = st.codeOf(*edge.DilutionMainID)
	}
	return input
}

func applyUpdate(input *entities.BOMEdgeInput, update entities.BOMEdgeUpdate) {
	if update.Parent != nil {
		input.Parent = *update.Parent
	}
	if update.Child != nil {
		input.Child = *update.Child
	}
	if update.QtyPer != nil {
		input.QtyPer = *update.QtyPer
	}
	if update.IsDilution != nil {
		input.IsDilution = *update.IsDilution
	}
	if update.PerMainQty != nil {
		input.PerMainQty = *update.PerMainQty
	}
	if update.DilutionMain != nil {
		input.DilutionMain = *update.DilutionMain
	}
}

func (st *state) view(edge entities.BOMEdge) entities.BOMEdgeView {
	view := entities.BOMEdgeView{
		ID:         edge.ID,
		ParentCode: st.codeOf(edge.ParentID),
		ChildCode:  st.codeOf(edge.ChildID),
		QtyPer:     edge.QtyPer,
		IsDilution: edge.IsDilution,
		PerMainQty: edge.PerMainQty,
	}
	if edge.DilutionMainID != nil {
		view.DilutionMainCode = st.codeOf(*edge.DilutionMainID)
	}
	return view
}

func (st *state) bomEdgesByItem(id entities.ItemID) []entities.BOMEdge {
	var edges []entities.BOMEdge
	for _, edge := range valuesByKey(st.edges) {
		if edge.References(id) {
			edges = append(edges, edge)
		}
	}
	return edges
}

func (st *state) reassignBOMEdges(from, to entities.ItemID) (int64, error) {
	var n int64
	for id, edge := range st.edges {
		if !edge.References(from) {
			continue
		}
		rewritten := edge.Reassign(from, to)
		if rewritten.ParentID == rewritten.ChildID {
			return n, fmt.Errorf("%w: bom line %d would consume its own parent", entities.ErrInvalidReference, id)
		}
		st.edges[id] = rewritten
		n++
	}
	return n, nil
}

func (st *state) restoreBOMEdge(edge entities.BOMEdge) error {
	if _, ok := st.edges[edge.ID]; !ok {
		return fmt.Errorf("%w: bom line %d", entities.ErrNotFound, edge.ID)
	}
	refs := []entities.ItemID{edge.ParentID, edge.ChildID}
	if edge.DilutionMainID != nil {
		refs = append(refs, *edge.DilutionMainID)
	}
	for _, ref := range refs {
		if !st.itemExists(ref) {
			return fmt.Errorf("%w: bom line %d references missing item %d", entities.ErrInvalidReference, edge.ID, ref)
		}
	}
	st.edges[edge.ID] = edge
	return nil
}
