// Package report converts academic hours into the reported units and renders them.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"taiga-hours/internal/domain"
)

// NoHours is printed when the hours of a user could not be collected.
const NoHours = "The user do not have any hours."

// An academic hour is 40 minutes; a course credit is 38 academic hours.
const (
	astronomicalNum = 2
	astronomicalDen = 3
	hoursPerCredit  = 38
)

// Summary is one block of a report in every unit.
type Summary struct {
	Academic     float64 `json:"academic"`
	Astronomical float64 `json:"astronomical"`
	Credits      float64 `json:"credits"`
}

func Academic(h float64) float64     { return h }
func Astronomical(h float64) float64 { return h * astronomicalNum / astronomicalDen }
func Credits(h float64) float64      { return h / hoursPerCredit }

// Summarize converts academic hours into a Summary.
func Summarize(h float64) Summary {
	return Summary{Academic: Academic(h), Astronomical: Astronomical(h), Credits: Credits(h)}
}

// Format renders the report printed by the interactive shell.
func Format(username string, hours domain.UserHours) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nUser %s\n", username)
	writeSection(&b, "Closed", hours.ClosedHours)
	writeSection(&b, "Not Closed", hours.NotClosedHours)
	if len(hours.NotClosedTasks) != 0 {
		b.WriteString("\nNot closed tasks:\n")
		for _, t := range hours.NotClosedTasks {
			fmt.Fprintf(&b, "%s - %s\n", t.Subject, Number(t.Hours))
		}
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, h float64) {
	s := Summarize(h)
	fmt.Fprintf(b, "\n%s:\nAcademic hours: %s \nAstronomical hours: %s \nCredits: %s\n",
		title, Number(s.Academic), Number(s.Astronomical), Number(s.Credits))
}

// Number formats v with the fewest digits that round-trip. Magnitudes below
// 1e-6 or from 1e21 up use exponent form with an unpadded exponent:
// 1e-7, 2.5e+21.
func Number(v float64) string {
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	mant, sign, exp := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	return mant + "e" + string(sign) + exp
}
