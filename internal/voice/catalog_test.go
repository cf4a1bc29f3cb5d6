package voice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meetvaani/vaani/internal/voice"
)

func TestLoadCatalogSeed(t *testing.T) {
	catalog, err := voice.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog err: %v", err)
	}

	if len(catalog.All()) == 0 {
		t.Fatal("seed catalog is empty")
	}
	if _, ok := catalog.Find("priya"); !ok {
		t.Fatal("seed catalog missing priya")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.yaml")
	content := `voices:
  - id: asha
    name: Asha
    description: Test voice
    language: en
    engine_voice: en-in+f1
    premium: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write voices file: %v", err)
	}

	catalog, err := voice.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog err: %v", err)
	}

	if len(catalog.All()) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(catalog.All()))
	}
	asha, ok := catalog.Find("asha")
	if !ok {
		t.Fatal("asha missing from catalog")
	}
	if asha.EngineVoice != "en-in+f1" || !asha.Premium {
		t.Fatalf("unexpected voice fields: %+v", asha)
	}
}

func TestLoadCatalogRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.yaml")
	if err := os.WriteFile(path, []byte("voices: []\n"), 0o644); err != nil {
		t.Fatalf("write voices file: %v", err)
	}

	if _, err := voice.LoadCatalog(path); err == nil {
		t.Fatal("expected error for empty voices file")
	}
}

func TestDefaultForPrefersPremium(t *testing.T) {
	catalog, err := voice.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog err: %v", err)
	}

	v, ok := catalog.DefaultFor("en")
	if !ok || v.ID != "priya" {
		t.Fatalf("expected priya as English default, got %+v ok=%v", v, ok)
	}

	if _, ok := catalog.DefaultFor("fr"); ok {
		t.Fatal("expected no default for unknown language")
	}
}

func TestCandidatesOrder(t *testing.T) {
	catalog, err := voice.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog err: %v", err)
	}

	ids := func(requested, language string) []string {
		var out []string
		for _, v := range catalog.Candidates(requested, language) {
			out = append(out, v.ID)
		}
		return out
	}

	got := ids("arjun", "en")
	if len(got) != 2 || got[0] != "arjun" || got[1] != "priya" {
		t.Fatalf("unexpected candidates for requested voice: %v", got)
	}

	got = ids("", "en")
	if len(got) != 2 || got[0] != "priya" {
		t.Fatalf("unexpected default candidates: %v", got)
	}

	got = ids("no-such-voice", "hi")
	if len(got) != 2 || got[0] != "vaani" {
		t.Fatalf("unknown voice should fall back to language default: %v", got)
	}

	got = ids("hi_default", "en")
	if len(got) == 0 || got[0] != "vaani" {
		t.Fatalf("alias should resolve to vaani: %v", got)
	}
}
