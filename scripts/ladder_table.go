// ladder_table prints every level of both cultivation ladders with its
// threshold and the total experience needed to reach it.
// Usage: go run scripts/ladder_table.go [content.yaml]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"cultivation/internal/game"
)

func main() {
	code := run()
	if code != 0 {
		os.Exit(code)
	}
}

func run() int {
	content := game.DefaultContent()
	switch len(os.Args) {
	case 1:
	case 2:
		path := filepath.Clean(os.Args[1])
		if strings.Contains(path, "..") {
			fmt.Fprintf(os.Stderr, "path must not escape current directory\n")
			return 1
		}
		c, err := game.LoadContent(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
			return 1
		}
		content = c
	default:
		fmt.Fprintf(os.Stderr, "usage: go run scripts/ladder_table.go [content.yaml]\n")
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, kind := range []game.LadderKind{game.LadderQi, game.LadderBody} {
		l := content.Ladder(kind)
		if l == nil {
			continue
		}
		fmt.Fprintf(w, "%s ladder\t\t\t\t\n", kind)
		fmt.Fprintf(w, "level\trealm\tstage\tto reach\tto advance\t\n")
		for i := 0; i < l.Len(); i++ {
			pos, _ := l.Locate(i)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", i, pos.Realm.Name, pos.Level.Name,
				humanize.Commaf(l.TotalExpForLevel(i)), humanize.Commaf(pos.Level.Threshold))
		}
		fmt.Fprintln(w, "\t\t\t\t\t")
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		return 1
	}
	return 0
}
