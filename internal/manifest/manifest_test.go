package manifest

import "testing"

func TestCatalogLoads(t *testing.T) {
	all := GetAll()
	if len(all) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	for slug, e := range all {
		if e.Slug != slug {
			t.Errorf("entry %q carries slug %q", slug, e.Slug)
		}
		if e.Type != TypePlugin && e.Type != TypeTheme {
			t.Errorf("entry %q has type %q", slug, e.Type)
		}
		if e.Repo == "" || e.Name == "" {
			t.Errorf("entry %q is missing name or repo", slug)
		}
	}
}

func TestGet(t *testing.T) {
	e, ok := Get("ps-chat")
	if !ok {
		t.Fatal("ps-chat missing from catalog")
	}
	if e.Type != TypePlugin {
		t.Errorf("ps-chat type = %q", e.Type)
	}
	if e.Repo == "" {
		t.Error("ps-chat has no repo")
	}
	if _, ok := Get("definitely-not-ours"); ok {
		t.Error("unknown slug must not resolve")
	}
}

func TestGetAllReturnsCopy(t *testing.T) {
	all := GetAll()
	delete(all, "ps-chat")
	if _, ok := Get("ps-chat"); !ok {
		t.Error("mutating the returned map must not touch the catalog")
	}
}

func TestCategories(t *testing.T) {
	if len(Categories(TypePlugin)) == 0 {
		t.Error("no plugin categories")
	}
	if len(Categories(TypeTheme)) == 0 {
		t.Error("no theme categories")
	}
}

func TestCompatRelations(t *testing.T) {
	compat := CompatiblePlugins("ps-padma-child")
	if len(compat) == 0 {
		t.Fatal("ps-padma-child declares compatibilities")
	}
	for _, c := range compat {
		if _, ok := Get(c.Slug); !ok {
			t.Errorf("compat target %q not in catalog", c.Slug)
		}
		if c.Name == "" {
			t.Errorf("compat target %q has no display name", c.Slug)
		}
	}

	used := UsedBy(compat[0].Slug)
	found := false
	for _, u := range used {
		if u.Slug == "ps-padma-child" {
			found = true
		}
	}
	if !found {
		t.Error("UsedBy must mirror CompatiblePlugins")
	}
}
