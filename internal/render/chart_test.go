package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChartRenderer_Render(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotForm = map[string]string{
			"cht": r.PostFormValue("cht"),
			"chl": r.PostFormValue("chl"),
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake bytes"))
	}))
	defer srv.Close()

	png, err := NewChartRenderer(srv.URL).Render(context.Background(), "digraph{a->b}")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(png) != "\x89PNG fake bytes" {
		t.Errorf("png = %q", png)
	}
	if gotForm["cht"] != "gv" {
		t.Errorf("cht = %q, want gv", gotForm["cht"])
	}
	if gotForm["chl"] != "digraph{a->b}" {
		t.Errorf("chl = %q", gotForm["chl"])
	}
}

func TestChartRenderer_RenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad graph", http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := NewChartRenderer(srv.URL).Render(context.Background(), "nonsense"); err == nil {
		t.Fatal("Render() should fail on an error status")
	}
}

func TestNewChartRenderer_DefaultURL(t *testing.T) {
	r := NewChartRenderer("")
	if r.url != DefaultChartURL {
		t.Errorf("url = %q, want %q", r.url, DefaultChartURL)
	}
}
