// Package report renders a printable cultivation record: both ladders drawn
// as a journey of realm seals on parchment, followed by the character's
// attributes, resources and progress.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"cultivation/internal/game"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	sealSize  = 40.0
	pathStep  = 56.0
	fontSize  = 8
	titleSize = 16
	labelSize = 7
)

type stop struct {
	name    string
	index   int
	reached bool
	current bool
}

// Generate returns PDF bytes for the character's record. A nil character or
// content yields nil.
func Generate(content *game.Content, c *game.Character, printed time.Time) ([]byte, error) {
	if content == nil || c == nil {
		return nil, nil
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawWavyBorder(pdf)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+10, margin+8)
	pdf.CellFormat(pageW-2*margin-20, 16, "Cultivation Record", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize+1)
	pdf.SetXY(margin+10, margin+28)
	pdf.CellFormat(pageW-2*margin-20, 12, subtitle(content, c), "", 0, "C", false, 0, "")

	y := margin + 60.0
	for _, kind := range []game.LadderKind{game.LadderQi, game.LadderBody} {
		l := content.Ladder(kind)
		if l == nil {
			continue
		}
		y = drawLadder(pdf, l, c.Ladder(kind).Level, y)
	}

	drawSheet(pdf, content, c, y+6)

	pdf.SetFont("Helvetica", "I", labelSize)
	pdf.SetXY(margin+10, pageH-margin-18)
	pdf.CellFormat(pageW-2*margin-20, 10, "Recorded "+printed.Format("2 Jan 2006 15:04"), "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func subtitle(content *game.Content, c *game.Character) string {
	parts := []string{c.Name}
	if p, ok := content.Path(c.Path); ok {
		parts = append(parts, p.Name)
	}
	if t, ok := content.Talent(c.Talent); ok {
		parts = append(parts, t.Name)
	}
	return strings.Join(parts, "  |  ")
}

// ladderStops turns the realms of a ladder into stops, marking how far the
// character has come.
func ladderStops(l *game.Ladder, level int) []stop {
	cur := -1
	if pos, ok := l.Locate(level); ok {
		cur = pos.RealmIndex
	}
	stops := make([]stop, len(l.Realms))
	for i := range l.Realms {
		stops[i] = stop{name: l.Realms[i].Name, index: i, reached: i <= cur, current: i == cur}
	}
	return stops
}

// drawLadder lays the realms out as a winding path and returns the y below it.
func drawLadder(pdf *gofpdf.Fpdf, l *game.Ladder, level int, top float64) float64 {
	heading := "Qi Cultivation"
	if l.Kind == game.LadderBody {
		heading = "Body Tempering"
	}
	pdf.SetFont("Helvetica", "B", fontSize+3)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetXY(margin+14, top)
	pdf.CellFormat(200, 12, heading, "", 0, "L", false, 0, "")
	if pos, ok := l.Locate(level); ok {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetXY(pageW-margin-214, top)
		pdf.CellFormat(200, 12, pos.Title(), "", 0, "R", false, 0, "")
	}

	stops := ladderStops(l, level)
	perRow := 7
	x0 := float64(margin) + 50
	y0 := top + 44
	positions := make([][2]float64, len(stops))
	for i := range stops {
		row := i / perRow
		col := i % perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		positions[i][0] = x0 + float64(col)*(pathStep+14)
		positions[i][1] = y0 + float64(row)*(pathStep+16)
	}

	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 0; i < len(positions)-1; i++ {
		if stops[i+1].reached {
			pdf.SetDrawColor(180, 40, 40)
		} else {
			pdf.SetDrawColor(160, 140, 110)
		}
		pdf.Line(positions[i][0], positions[i][1], positions[i+1][0], positions[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)

	for i, s := range stops {
		x, y := positions[i][0], positions[i][1]
		drawSeal(pdf, x, y, s)
		label := strings.ToUpper(s.name)
		if len(label) > 20 {
			label = label[:17] + "..."
		}
		pdf.SetFont("Helvetica", "B", labelSize-1)
		pdf.SetTextColor(40, 25, 15)
		pdf.SetXY(x-sealSize/2-12, y+sealSize/2+3)
		pdf.CellFormat(sealSize+24, 8, label, "", 0, "C", false, 0, "")
		if s.current {
			pdf.SetFont("Helvetica", "I", labelSize-1)
			pdf.SetXY(x-sealSize/2, y+sealSize/2+11)
			pdf.CellFormat(sealSize, 7, "You are here", "", 0, "C", false, 0, "")
		}
	}
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetDrawColor(80, 50, 30)

	rows := (len(stops) + perRow - 1) / perRow
	return y0 + float64(rows)*(pathStep+16)
}

// drawSeal draws a realm seal: a circle with a glyph that grows with the
// realm's rank. Unreached realms are drawn faded.
func drawSeal(pdf *gofpdf.Fpdf, x, y float64, s stop) {
	r := sealSize / 2.0
	if s.current {
		pdf.SetDrawColor(80, 50, 20)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4.0, "D")
	}
	if s.reached {
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetFillColor(236, 214, 170)
	} else {
		pdf.SetDrawColor(150, 130, 100)
		pdf.SetFillColor(245, 235, 210)
	}
	pdf.SetLineWidth(1.2)
	pdf.Circle(x, y, r, "FD")

	// one stroke per rank, arranged like the spokes of a wheel
	spokes := s.index + 1
	for i := 0; i < spokes; i++ {
		angle := float64(i)*2*math.Pi/float64(spokes) - math.Pi/2
		pdf.Line(x, y, x+r*0.6*math.Cos(angle), y+r*0.6*math.Sin(angle))
	}
	pdf.Circle(x, y, r*0.2, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

func drawSheet(pdf *gofpdf.Fpdf, content *game.Content, c *game.Character, top float64) {
	colW := (pageW - 2*margin - 40) / 2.0
	left := float64(margin) + 14
	right := left + colW + 12

	a, d := c.Attributes, c.Derived
	y := section(pdf, left, top, colW, "Attributes", [][2]string{
		{"Vitality", humanize.Comma(int64(a.Vitality))},
		{"Spiritual Power", humanize.Comma(int64(a.SpiritualPower))},
		{"Comprehension", humanize.Comma(int64(a.Comprehension))},
		{"Health", fmt.Sprintf("%s / %s", humanize.Comma(int64(d.Health)), humanize.Comma(int64(d.MaxHealth)))},
		{"Mana", humanize.Comma(int64(d.Mana))},
		{"Offense", humanize.Comma(int64(d.Offense))},
		{"Physical Defense", humanize.FormatFloat("#,###.#", d.PhysicalDefense)},
		{"Magical Defense", humanize.FormatFloat("#,###.#", d.MagicalDefense)},
		{"Total Power", humanize.Comma(int64(game.TotalPower(c)))},
	})
	section(pdf, left, y+8, colW, "Divine Powers", abilityRows(content, c))

	y = section(pdf, right, top, colW, "Resources", [][2]string{
		{"Spiritual Qi", humanize.CommafWithDigits(c.Resources.SpiritualQi, 1)},
		{"Body Energy", humanize.CommafWithDigits(c.Resources.BodyEnergy, 1)},
		{"Ability Essence", humanize.CommafWithDigits(c.Resources.AbilityCurrency, 1)},
		{"Time Cultivated", (time.Duration(c.Stats.PlayTime) * time.Second).String()},
		{"Explorations", humanize.Comma(int64(c.Stats.Explorations))},
		{"Breakthroughs", fmt.Sprintf("%d of %d attempts", c.Stats.SuccessfulBreakthroughs, c.Stats.BreakthroughAttempts)},
	})
	section(pdf, right, y+8, colW, "Secondary Paths", pathRows(content, c))
}

func abilityRows(content *game.Content, c *game.Character) [][2]string {
	if len(c.Abilities.Unlocked) == 0 {
		return [][2]string{{"None awakened", ""}}
	}
	rows := make([][2]string, 0, len(c.Abilities.Unlocked))
	for _, id := range c.Abilities.Unlocked {
		name := string(id)
		if a, ok := content.Ability(id); ok {
			name = a.Name
		}
		level := "untrained"
		if n := c.Abilities.Levels[id]; n > 0 {
			level = humanize.Ordinal(n) + " level"
		}
		rows = append(rows, [2]string{name, level})
	}
	return rows
}

func pathRows(content *game.Content, c *game.Character) [][2]string {
	rows := make([][2]string, 0, len(game.SecondaryPaths))
	for _, id := range game.SecondaryPaths {
		p := c.SecondaryPaths[id]
		if p == nil {
			continue
		}
		name := string(id)
		if sp, ok := content.SecondaryPath(id); ok {
			name = sp.Name
		}
		rows = append(rows, [2]string{name, fmt.Sprintf("Lv %d (%s xp)", p.Level, humanize.Ftoa(math.Floor(p.Experience)))})
	}
	return rows
}

// section writes a titled two-column table and returns the y below it.
func section(pdf *gofpdf.Fpdf, x, y, w float64, title string, rows [][2]string) float64 {
	pdf.SetFont("Helvetica", "B", fontSize+2)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetXY(x, y)
	pdf.CellFormat(w, 12, title, "B", 0, "L", false, 0, "")
	y += 15
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetTextColor(40, 25, 15)
	for _, r := range rows {
		pdf.SetXY(x, y)
		pdf.CellFormat(w*0.55, 10, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(w*0.45, 10, r[1], "", 0, "R", false, 0, "")
		y += 11
	}
	return y
}

// drawWavyBorder draws a tattered black border along the parchment edge.
func drawWavyBorder(pdf *gofpdf.Fpdf) {
	pts := wavyRectPoints(margin, margin, pageW-2*margin, pageH-2*margin, 12, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with sinusoidal wobble on each side.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+4)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + t*w + amp*math.Sin(float64(i)*0.7), Y: y + amp*math.Cos(float64(i)*0.5)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w + amp*math.Sin(float64(i)*0.6), Y: y + t*h + amp*math.Cos(float64(i)*0.4)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w - t*w + amp*math.Sin(float64(i)*0.8), Y: y + h + amp*math.Cos(float64(i)*0.3)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + amp*math.Sin(float64(i)*0.5), Y: y + h - t*h + amp*math.Cos(float64(i)*0.6)})
	}
	return pts
}
