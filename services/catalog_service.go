package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/utils/apperr"
)

// CatalogService assembles the cycle/resource/content browsing tree
// out of the flat indicator catalog.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ContentNode is a leaf of the catalog tree.
type ContentNode struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ResourceNode groups the contents referenced by indicators under one resource.
type ResourceNode struct {
	ID       uint          `json:"id"`
	Name     string        `json:"name"`
	Contents []ContentNode `json:"contents"`
}

// CycleNode is the root level of the catalog tree.
type CycleNode struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Resources []ResourceNode `json:"resources"`
}

// LoadTree fetches all indicators with their catalog references and
// assembles the browsing tree.
func (s *CatalogService) LoadTree() ([]CycleNode, error) {
	var indicators []model.Indicator
	err := s.db.
		Preload("Resource").
		Preload("Resource.Cycle").
		Preload("Content").
		Find(&indicators).Error
	if err != nil {
		return nil, apperr.Fetch("load indicators", err)
	}

	return BuildTree(indicators), nil
}

// BuildTree folds a flat indicator list into Cycle → Resource →
// Content[]. Nodes are deduplicated by id keeping the first-seen
// instance; contents are accumulated only when an indicator explicitly
// references one. Indicators whose resource carries no cycle are
// malformed catalog data and are skipped with a warning rather than
// failing the whole tree. Grouping follows encounter order.
func BuildTree(indicators []model.Indicator) []CycleNode {
	tree := []CycleNode{}
	cycleIdx := map[uint]int{}
	resourceIdx := map[uint]int{}  // resource id -> index within its cycle
	contentSeen := map[uint]bool{} // content ids already attached

	for _, ind := range indicators {
		cycle := ind.Resource.Cycle
		if cycle.ID == 0 {
			log.Printf("Warning: indicator %d has no cycle reference, skipping", ind.ID)
			continue
		}

		ci, ok := cycleIdx[cycle.ID]
		if !ok {
			tree = append(tree, CycleNode{ID: cycle.ID, Name: cycle.Name, Resources: []ResourceNode{}})
			ci = len(tree) - 1
			cycleIdx[cycle.ID] = ci
		}

		ri, ok := resourceIdx[ind.ResourceID]
		if !ok {
			tree[ci].Resources = append(tree[ci].Resources, ResourceNode{
				ID:       ind.Resource.ID,
				Name:     ind.Resource.Name,
				Contents: []ContentNode{},
			})
			ri = len(tree[ci].Resources) - 1
			resourceIdx[ind.ResourceID] = ri
		}

		if ind.ContentID != nil && ind.Content != nil && !contentSeen[*ind.ContentID] {
			tree[ci].Resources[ri].Contents = append(tree[ci].Resources[ri].Contents, ContentNode{
				ID:   ind.Content.ID,
				Name: ind.Content.Name,
			})
			contentSeen[*ind.ContentID] = true
		}
	}

	return tree
}
