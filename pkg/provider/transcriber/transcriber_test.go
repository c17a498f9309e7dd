package transcriber

import "testing"

func TestConcatShiftsTimestamps(t *testing.T) {
	t.Parallel()

	parts := []*Transcript{
		{
			Text:     "part one",
			Language: "en",
			Duration: 60,
			Segments: []Segment{
				{Start: 0, End: 2.5, Text: "part"},
				{Start: 3, End: 4, Text: "one"},
			},
		},
		{
			Text:     "part two",
			Duration: 30,
			Segments: []Segment{
				{Start: 1, End: 2, Text: "part two"},
			},
		},
		{
			Text:     "tail",
			Duration: 10,
			Segments: []Segment{
				{Start: 0.5, End: 1, Text: "tail"},
			},
		},
	}

	got := Concat(parts)

	if got.Text != "part one\npart two\ntail" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Duration != 100 {
		t.Errorf("Duration = %v, want 100", got.Duration)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want en", got.Language)
	}
	if len(got.Segments) != 4 {
		t.Fatalf("len(Segments) = %d, want 4", len(got.Segments))
	}
	// Second file starts after the first file's 60 seconds.
	if got.Segments[2].Start != 61 || got.Segments[2].End != 62 {
		t.Errorf("Segments[2] = %+v, want Start 61 End 62", got.Segments[2])
	}
	// Third file starts after 90 cumulative seconds.
	if got.Segments[3].Start != 90.5 {
		t.Errorf("Segments[3].Start = %v, want 90.5", got.Segments[3].Start)
	}

	// Inputs stay untouched.
	if parts[1].Segments[0].Start != 1 {
		t.Errorf("input mutated: %+v", parts[1].Segments[0])
	}
}

func TestConcatSkipsNilParts(t *testing.T) {
	t.Parallel()

	got := Concat([]*Transcript{nil, {Text: "only", Duration: 5}, nil})
	if got.Text != "only" || got.Duration != 5 {
		t.Errorf("got = %+v", got)
	}
}

func TestConcatEmpty(t *testing.T) {
	t.Parallel()

	got := Concat(nil)
	if got.Text != "" || got.Duration != 0 || len(got.Segments) != 0 {
		t.Errorf("Concat(nil) = %+v, want zero transcript", got)
	}
}

func TestFormatText(t *testing.T) {
	t.Parallel()

	tr := &Transcript{
		Text: "hello there general",
		Segments: []Segment{
			{Start: 0, End: 1, Text: " hello there"},
			{Start: 65.4, End: 66, Text: " general"},
		},
	}

	if got := FormatText(tr, false); got != "hello there\ngeneral" {
		t.Errorf("FormatText(false) = %q", got)
	}
	if got := FormatText(tr, true); got != "[00:00] hello there\n[01:05] general" {
		t.Errorf("FormatText(true) = %q", got)
	}
}

func TestFormatTextFallsBackToFullText(t *testing.T) {
	t.Parallel()

	tr := &Transcript{Text: "no segments here"}
	if got := FormatText(tr, true); got != "no segments here" {
		t.Errorf("FormatText = %q", got)
	}
	if got := FormatText(nil, true); got != "" {
		t.Errorf("FormatText(nil) = %q", got)
	}
}
