package main

import (
	"io/fs"
	"strings"
	"testing"
)

func TestPageUsesEveryFormEndpoint(t *testing.T) {
	js, err := fs.ReadFile(staticFiles, "static/js/ngfw.js")
	if err != nil {
		t.Fatalf("read page script: %v", err)
	}
	for _, path := range []string{
		"/fields/${f.name}/toggle",
		"/fields/${f.name}/step",
		"/fields/${f.name}`",
		"/cards/${cardName}/click",
		"/sections/${id}",
		"/disclaimer",
		"/device",
		"/ws",
	} {
		if !strings.Contains(string(js), path) {
			t.Errorf("page script never calls %q", path)
		}
	}

	html, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, id := range []string{`id="disclaimer"`, `id="devselect"`, `id="disable_key_check"`, `id="fields"`} {
		if !strings.Contains(string(html), id) {
			t.Errorf("page lacks %s", id)
		}
	}
}
