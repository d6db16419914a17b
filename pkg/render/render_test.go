package render

import (
	"testing"

	"github.com/zachfi/nowplaying/pkg/track"
)

func record(artist, title string) track.Record {
	return track.NewRecord([]track.Pair{
		{Field: track.Artist, Value: artist},
		{Field: track.Title, Value: title},
	})
}

func TestExecute(t *testing.T) {
	r := track.NewRecord([]track.Pair{
		{Field: track.Artist, Value: "Artist"},
		{Field: track.Title, Value: "Title"},
		{Field: track.Album, Value: "Album"},
	})

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"default", "", "Artist - Title"},
		{"bare names", "{{title}} by {{artist}} ({{album}})", "Title by Artist (Album)"},
		{"dot names", "{{.artist}}/{{.title}}", "Artist/Title"},
		{"missing field", "{{artist}}|{{genre}}|", "Artist||"},
		{"multiline", "{{artist}}\r\n{{title}}", "Artist\r\nTitle"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl, err := Parse(tc.src)
			if err != nil {
				t.Fatal(err)
			}
			got, err := tmpl.Execute(ForRecord(r))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExecuteHistory(t *testing.T) {
	tmpl, err := Parse(`<ul>{{range tracks}}<li>{{.artist}} - {{.title}}{{.genre}}</li>{{end}}</ul> now: {{title}}`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Execute(ForHistory([]track.Record{record("a", "1"), record("b", "2")}))
	if err != nil {
		t.Fatal(err)
	}

	want := "<ul><li>a - 1</li><li>b - 2</li></ul> now: 2"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseMalformedFallsBack(t *testing.T) {
	for _, src := range []string{
		"{{artist",
		"{{unknown}}",
		"{{range tracks}}",
		"{{range tracks}}{{artist}}{{end}}",
		"{{range tracks}}{{if .title}}{{title}}{{end}}{{end}}",
	} {
		tmpl, err := Parse(src)
		if err == nil {
			t.Errorf("Parse(%q): expected error", src)
			continue
		}
		if !tmpl.IsDefault() {
			t.Errorf("Parse(%q): expected default template", src)
		}

		got, err := tmpl.Execute(ForRecord(record("A", "T")))
		if err != nil || got != "A - T" {
			t.Errorf("fallback rendered %q, %v", got, err)
		}
	}
}

func TestExecuteFailureFallsBack(t *testing.T) {
	tmpl, err := Parse(`{{index .tracks 5}}`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Execute(ForHistory([]track.Record{record("A", "T")}))
	if err == nil {
		t.Fatal("expected execution error")
	}
	if got != "A - T" {
		t.Errorf("got %q, want default output", got)
	}
}

func TestBareNamesOutsideRange(t *testing.T) {
	tmpl, err := Parse(`{{range tracks}}{{.title}},{{else}}{{artist}}{{end}}|{{with .title}}{{title}}{{end}}`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Execute(ForHistory([]track.Record{record("A", "1"), record("B", "2")}))
	if err != nil {
		t.Fatal(err)
	}
	if want := "1,2,|2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHTML(t *testing.T) {
	tmpl, err := Parse(HTML)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Execute(ForHistory([]track.Record{record("A & B", "1"), record("C", "<2>")}))
	if err != nil {
		t.Fatal(err)
	}

	want := `<!DOCTYPE html>
<html>
    <body>
        <p>A &amp; B - 1</p>
        <p>C - &lt;2&gt;</p>
    </body>
</html>
`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
