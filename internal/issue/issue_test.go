// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		CompilerNotFoundId,
		CompilerLaunchFailedId,
		InvalidOptionId,
		CompilationFailedId,
		SourceNotFoundId,
		OutputWriteFailedId,
		ConfigLoadFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true

		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil", id)
		}
	}

	if CompilerNotFoundId != 1 {
		t.Errorf("CompilerNotFoundId = %d, want 1", CompilerNotFoundId)
	}
	if len(Values()) != len(ids) {
		t.Errorf("len(Values()) = %d, want %d", len(Values()), len(ids))
	}
}

func TestValues_Ordered(t *testing.T) {
	values := Values()
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered at %d: %d then %d", i, values[i-1].Id(), values[i].Id())
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestIssue_LinksAreClones(t *testing.T) {
	i := Get(CompilerNotFoundId)
	links := i.DocLinks()
	if len(links) == 0 {
		t.Fatal("CompilerNotFound should have doc links")
	}
	links[0] = "changed"
	if i.DocLinks()[0] == "changed" {
		t.Error("DocLinks() should return a clone")
	}
	if i.ExtLinks() != nil {
		t.Errorf("ExtLinks() = %v, want nil", i.ExtLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	// Not parallel: replaces the package-level render function.
	originalRender := render
	t.Cleanup(func() { render = originalRender })

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(CompilerNotFoundId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if !strings.Contains(rendered, "mpy-cross binary not found") {
		t.Error("Render() output should contain the page title")
	}
	if !strings.Contains(rendered, "## See also") || !strings.Contains(rendered, string(mpyCrossDocLink)) {
		t.Errorf("Render() output should list doc links:\n%s", rendered)
	}

	rendered, err = Get(SourceNotFoundId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("pages without links should not have a See also section")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, i := range Values() {
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", i.Id())
			continue
		}
		rendered, err := i.Render("ascii")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", i.Id(), err)
		}
		if rendered == "" {
			t.Errorf("Issue %d rendered to empty string", i.Id())
		}
	}
}
