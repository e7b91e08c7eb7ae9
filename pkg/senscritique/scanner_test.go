package senscritique

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/senscritique/pkg/profile"
)

const posterPage = `<html><body>
<img class="poster" alt="Heat" src="https://media.senscritique.com/media/000012/300/heat.jpg">
<img alt="KiMi_badge" src="https://media.senscritique.com/media/kimi/badge.png">
<img alt="Logo" src="https://cdn.example.com/logo.png">
<img alt="Tom &amp; Jerry" loading="lazy" src="https://media.senscritique.com/media/000034/300/tom.jpg">
<img src="https://media.senscritique.com/media/000056/300/dune.jpg" alt="Dune">
<img alt="" src="https://media.senscritique.com/media/000078/300/empty.jpg">
</body></html>`

func TestPatternScanner(t *testing.T) {
	got := NewPatternScanner(DefaultCDN).Scan(posterPage)
	want := []profile.Favorite{
		{Title: "Heat", Image: "https://media.senscritique.com/media/000012/300/heat.jpg"},
		{Title: "Tom & Jerry", Image: "https://media.senscritique.com/media/000034/300/tom.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PatternScanner.Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectorScanner(t *testing.T) {
	got := NewSelectorScanner(DefaultCDN, discard).Scan(posterPage)
	want := []profile.Favorite{
		{Title: "Heat", Image: "https://media.senscritique.com/media/000012/300/heat.jpg"},
		{Title: "Tom & Jerry", Image: "https://media.senscritique.com/media/000034/300/tom.jpg"},
		{Title: "Dune", Image: "https://media.senscritique.com/media/000056/300/dune.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectorScanner.Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScannersExcludeMarker(t *testing.T) {
	page := `<img alt="KiMi_1" src="https://media.senscritique.com/a.png">` +
		`<img alt="prefix KiMi_ suffix" src="https://media.senscritique.com/b.png">` +
		`<img alt="KiMi_2" src="https://media.senscritique.com/c.png">`

	scanners := map[string]ImageScanner{
		"pattern":  NewPatternScanner(DefaultCDN),
		"selector": NewSelectorScanner(DefaultCDN, discard),
	}
	for name, s := range scanners {
		t.Run(name, func(t *testing.T) {
			if got := s.Scan(page); len(got) != 0 {
				t.Errorf("Scan() = %v, want none", got)
			}
		})
	}
}

func TestPatternScannerCaseInsensitive(t *testing.T) {
	page := `<IMG ALT="Alien" SRC="https://media.senscritique.com/alien.jpg">`
	got := NewPatternScanner(DefaultCDN).Scan(page)
	if len(got) != 1 || got[0].Title != "Alien" {
		t.Errorf("Scan() = %v, want one favorite titled Alien", got)
	}
}

func TestScannerCustomCDN(t *testing.T) {
	page := `<img alt="Heat" src="https://img.mirror.test/heat.jpg">` +
		`<img alt="Dune" src="https://media.senscritique.com/dune.jpg">`
	got := NewPatternScanner("https://img.mirror.test").Scan(page)
	want := []profile.Favorite{{Title: "Heat", Image: "https://img.mirror.test/heat.jpg"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}
