package catalog

import (
	"testing"

	"github.com/andrianta/hoaxcheck/internal/config"
)

func testCatalog() *Catalog {
	return New(config.Catalog{
		Trusted: []config.Source{
			{Name: "Kompas", Domain: "kompas.com", Region: "indonesia"},
			{Name: "Detik", Domain: "detik.com", Region: "indonesia"},
			{Name: "Tempo", Domain: "tempo.co", Region: "indonesia"},
			{Name: "Reuters", Domain: "reuters.com", Region: "international"},
			{Name: "BBC", Domain: "bbc.com", Region: "international"},
		},
		FactCheckers: []config.Source{
			{Name: "TurnBackHoax", Domain: "turnbackhoax.id"},
			{Name: "Cek Fakta", Domain: "cekfakta.com"},
		},
	})
}

func TestPriorityOrderRegionalFirst(t *testing.T) {
	c := testCatalog()

	got := c.PriorityOrder(4, 1)
	if len(got) != 4 {
		t.Fatalf("expected 4 sources, got %d", len(got))
	}
	want := []string{"Kompas", "Detik", "Tempo", "Reuters"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
}

func TestPriorityOrderCap(t *testing.T) {
	c := testCatalog()

	got := c.PriorityOrder(2, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(got))
	}
	if got[0].Name != "Kompas" || got[1].Name != "Detik" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestRegional(t *testing.T) {
	c := testCatalog()

	got := c.Regional(RegionIndonesia, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 regional sources, got %d", len(got))
	}
	if got[0].Name != "Kompas" {
		t.Errorf("expected Kompas first, got %s", got[0].Name)
	}
}

func TestFactCheckersOrder(t *testing.T) {
	c := testCatalog()

	fc := c.FactCheckers()
	if len(fc) != 2 || fc[0].Name != "TurnBackHoax" {
		t.Errorf("unexpected fact-checkers: %+v", fc)
	}
}
