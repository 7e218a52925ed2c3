package report

import (
	"testing"

	"taiga-hours/internal/domain"
)

func TestConversions(t *testing.T) {
	for _, h := range []float64{0, 1, 3, 10, 38, 57.5, 1234} {
		if got := Academic(h); got != h {
			t.Errorf("Academic(%v) = %v", h, got)
		}
		if got, want := Astronomical(h), h*2/3; got != want {
			t.Errorf("Astronomical(%v) = %v, want %v", h, got, want)
		}
		if got, want := Credits(h), h/38; got != want {
			t.Errorf("Credits(%v) = %v, want %v", h, got, want)
		}
	}
	if Astronomical(0) != 0 || Credits(0) != 0 {
		t.Error("zero hours must convert to zero")
	}
	if Credits(76) != 2 || Astronomical(3) != 2 {
		t.Errorf("Credits(76)=%v Astronomical(3)=%v", Credits(76), Astronomical(3))
	}
}

func TestFormat(t *testing.T) {
	got := Format("ivanov", domain.UserHours{
		ClosedHours:    38,
		NotClosedHours: 10,
		NotClosedTasks: []domain.TaskHours{{Subject: "Slides", Hours: 4}, {Subject: "Demo", Hours: 6}},
	})
	want := "\nUser ivanov\n" +
		"\nClosed:\nAcademic hours: 38 \nAstronomical hours: 25.333333333333332 \nCredits: 1\n" +
		"\nNot Closed:\nAcademic hours: 10 \nAstronomical hours: 6.666666666666667 \nCredits: 0.2631578947368421\n" +
		"\nNot closed tasks:\nSlides - 4\nDemo - 6\n"
	if got != want {
		t.Fatalf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestFormat_NoOpenTasks(t *testing.T) {
	got := Format("petrov", domain.UserHours{})
	want := "\nUser petrov\n" +
		"\nClosed:\nAcademic hours: 0 \nAstronomical hours: 0 \nCredits: 0\n" +
		"\nNot Closed:\nAcademic hours: 0 \nAstronomical hours: 0 \nCredits: 0\n"
	if got != want {
		t.Fatalf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestNumber(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		12:       "12",
		2.5:      "2.5",
		1.0 / 3:  "0.3333333333333333",
		0.000001: "0.000001",
		1e-7:     "1e-7",
		-2.5e-8:  "-2.5e-8",
		1e20:     "100000000000000000000",
		2.5e21:   "2.5e+21",
	}
	for in, want := range tests {
		if got := Number(in); got != want {
			t.Errorf("Number(%v) = %q, want %q", in, got, want)
		}
	}
}
