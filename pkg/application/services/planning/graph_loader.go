package planning

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// LoadGraph splits stored BOM edges into the normal-consumption map keyed by
// parent and the dilution map keyed by main ingredient. Dilution edges without
// a main ingredient are dropped; a missing per-main quantity counts as zero.
func LoadGraph(edges []entities.BOMEdgeView) (entities.BOMMap, entities.DilutionMap) {
	bomMap := make(entities.BOMMap)
	dilutionMap := make(entities.DilutionMap)

	for _, edge := range edges {
		if !edge.IsDilution {
			bomMap[edge.ParentCode] = append(bomMap[edge.ParentCode], entities.BOMLine{
				Child:    edge.ChildCode,
				Quantity: edge.QtyPer,
			})
			continue
		}
		if edge.DilutionMainCode == "" {
			continue
		}

		perMain := decimal.Zero
		if edge.PerMainQty.Valid {
			perMain = edge.PerMainQty.Decimal
		}
		dilutionMap[edge.DilutionMainCode] = append(dilutionMap[edge.DilutionMainCode], entities.DilutionLine{
			Child:      edge.ChildCode,
			PerMainQty: perMain,
		})
	}

	return bomMap, dilutionMap
}
