package subtitle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/utils"
)

func TestSerializeSRTFraming(t *testing.T) {
	items := []models.Caption{
		{Index: 4, StartMS: 0, EndMS: 1000, Content: "First", Kind: models.KindCaption},
		{Index: 9, StartMS: 2000, EndMS: 3000, Content: "Second", Kind: models.KindCaption},
	}
	out, err := Serialize(items, "srt")
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.HasPrefix(out, utf8BOM) {
		t.Fatal("srt output missing BOM")
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nFirst\n\n2\n00:00:02,000 --> 00:00:03,000\nSecond\n"
	if got := string(out[len(utf8BOM):]); got != want {
		t.Errorf("framing:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerializeSkipsMeta(t *testing.T) {
	items := []models.Caption{
		{Index: 1, Content: "shown", Kind: models.KindCaption, EndMS: 1000},
		{Index: 2, Content: "NOTE hidden", Kind: models.KindMeta},
	}
	out, err := Serialize(items, "srt")
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if strings.Contains(string(out), "hidden") {
		t.Error("meta entry leaked into output")
	}
}

func TestSerializeUnknownFormat(t *testing.T) {
	if _, err := Serialize(nil, "docx"); !utils.IsCode(err, utils.CodeUnsupportedFormat) {
		t.Errorf("got %v, want UNSUPPORTED_FORMAT", err)
	}
	if _, err := ContentType("docx"); !utils.IsCode(err, utils.CodeUnsupportedFormat) {
		t.Errorf("ContentType: got %v, want UNSUPPORTED_FORMAT", err)
	}
}

func TestSerializeInconsistentTiming(t *testing.T) {
	items := []models.Caption{{Index: 1, StartMS: 5000, EndMS: 1000, Content: "x", Kind: models.KindCaption}}
	if _, err := Serialize(items, "srt"); !utils.IsCode(err, utils.CodeSerialization) {
		t.Errorf("got %v, want SERIALIZATION", err)
	}
}

func TestContentTypes(t *testing.T) {
	if ct, _ := ContentType("vtt"); ct != "text/vtt" {
		t.Errorf("vtt content type = %q", ct)
	}
	if ct, _ := ContentType("json"); ct != "application/json" {
		t.Errorf("json content type = %q", ct)
	}
}

func TestOutputFilename(t *testing.T) {
	cases := []struct {
		original, format, want string
	}{
		{"movie.srt", "vtt", "movie-aipolished.vtt"},
		{"a.b.c.srt", "json", "a.b.c-aipolished.json"},
		{"noext", "srt", "noext-aipolished.srt"},
		{".srt", "vtt", "subtitles-aipolished.vtt"},
	}
	for _, c := range cases {
		if got := OutputFilename(c.original, c.format); got != c.want {
			t.Errorf("OutputFilename(%q, %q) = %q, want %q", c.original, c.format, got, c.want)
		}
	}
}

func TestBOMPolicy(t *testing.T) {
	for _, f := range Formats() {
		if f.Extension == "json" {
			if f.UsesBOM {
				t.Error("json must not use a BOM")
			}
			continue
		}
		if !f.UsesBOM {
			t.Errorf("%s should use a BOM", f.Extension)
		}
	}
}
