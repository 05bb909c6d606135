package services

import (
	"testing"

	"github.com/aulacert/aula-cert-api/model"
)

func catalogIndicator(id uint, cycleID uint, cycleName string, resourceID uint, resourceName string, content *model.Content) model.Indicator {
	ind := model.Indicator{
		ID:         id,
		ResourceID: resourceID,
		Resource: model.Resource{
			ID:      resourceID,
			CycleID: cycleID,
			Name:    resourceName,
			Cycle:   model.Cycle{ID: cycleID, Name: cycleName},
		},
	}
	if content != nil {
		ind.ContentID = &content.ID
		ind.Content = content
	}
	return ind
}

func TestBuildTree(t *testing.T) {
	videoContent := &model.Content{ID: 10, ResourceID: 1, Name: "Videos"}
	quizContent := &model.Content{ID: 11, ResourceID: 1, Name: "Quizzes"}

	indicators := []model.Indicator{
		catalogIndicator(1, 1, "CICLO I", 1, "Materiales", videoContent),
		catalogIndicator(2, 1, "CICLO I", 1, "Materiales", quizContent),
		catalogIndicator(3, 1, "CICLO I", 2, "Foros", nil),
		catalogIndicator(4, 2, "CICLO II", 3, "Actividades", nil),
	}

	tree := BuildTree(indicators)
	if len(tree) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(tree))
	}

	cicloI := tree[0]
	if cicloI.Name != "CICLO I" {
		t.Fatalf("expected CICLO I first (encounter order), got %q", cicloI.Name)
	}
	if len(cicloI.Resources) != 2 {
		t.Fatalf("expected 2 resources under CICLO I, got %d", len(cicloI.Resources))
	}
	if len(cicloI.Resources[0].Contents) != 2 {
		t.Errorf("expected 2 contents under Materiales, got %d", len(cicloI.Resources[0].Contents))
	}
	if len(cicloI.Resources[1].Contents) != 0 {
		t.Errorf("Foros should have no contents, got %d", len(cicloI.Resources[1].Contents))
	}

	cicloII := tree[1]
	if len(cicloII.Resources) != 1 || cicloII.Resources[0].Name != "Actividades" {
		t.Errorf("unexpected CICLO II resources: %+v", cicloII.Resources)
	}
}

func TestBuildTreeDeduplicatesNodes(t *testing.T) {
	content := &model.Content{ID: 10, ResourceID: 1, Name: "Videos"}

	// Three indicators on the same resource, two referencing the same
	// content: one cycle node, one resource node, one content leaf.
	indicators := []model.Indicator{
		catalogIndicator(1, 1, "CICLO I", 1, "Materiales", content),
		catalogIndicator(2, 1, "CICLO I", 1, "Materiales", content),
		catalogIndicator(3, 1, "CICLO I", 1, "Materiales", nil),
	}

	tree := BuildTree(indicators)
	if len(tree) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(tree))
	}
	if len(tree[0].Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(tree[0].Resources))
	}
	if len(tree[0].Resources[0].Contents) != 1 {
		t.Errorf("expected 1 content, got %d", len(tree[0].Resources[0].Contents))
	}
}

func TestBuildTreeSkipsMissingCycle(t *testing.T) {
	broken := model.Indicator{
		ID:         1,
		ResourceID: 1,
		Resource:   model.Resource{ID: 1, Name: "Materiales"}, // no cycle loaded
	}
	good := catalogIndicator(2, 1, "CICLO I", 2, "Foros", nil)

	tree := BuildTree([]model.Indicator{broken, good})
	if len(tree) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(tree))
	}
	if tree[0].Resources[0].Name != "Foros" {
		t.Errorf("malformed indicator leaked into tree: %+v", tree[0].Resources)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	if tree == nil {
		t.Fatal("BuildTree(nil) should return an empty slice, not nil")
	}
	if len(tree) != 0 {
		t.Errorf("expected empty tree, got %d cycles", len(tree))
	}
}
