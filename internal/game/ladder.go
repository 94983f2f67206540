package game

// Position locates a flat ladder index inside its realm.
type Position struct {
	Realm        *Realm
	RealmIndex   int
	IndexInRealm int
	Level        *SubLevel
}

// IsRealmFinal reports whether the position is the last sub-level of its realm.
func (p Position) IsRealmFinal() bool {
	return p.IndexInRealm == len(p.Realm.Levels)-1
}

// Len is the number of sub-levels across all realms.
func (l *Ladder) Len() int {
	n := 0
	for _, r := range l.Realms {
		n += len(r.Levels)
	}
	return n
}

// Locate resolves a flat index. The second result is false when the index is
// outside the ladder.
func (l *Ladder) Locate(flat int) (Position, bool) {
	if flat < 0 {
		return Position{}, false
	}
	for i := range l.Realms {
		r := &l.Realms[i]
		if flat < len(r.Levels) {
			return Position{Realm: r, RealmIndex: i, IndexInRealm: flat, Level: &r.Levels[flat]}, true
		}
		flat -= len(r.Levels)
	}
	return Position{}, false
}

// NextRealmStart returns the flat index of the first sub-level of the realm
// after the one containing flat.
func (l *Ladder) NextRealmStart(flat int) (int, bool) {
	pos, ok := l.Locate(flat)
	if !ok || pos.RealmIndex+1 >= len(l.Realms) {
		return 0, false
	}
	start := 0
	for i := 0; i <= pos.RealmIndex; i++ {
		start += len(l.Realms[i].Levels)
	}
	return start, true
}

// TotalExpForLevel is the cumulative experience needed to stand on target,
// counting every threshold crossed on the way.
func (l *Ladder) TotalExpForLevel(target int) float64 {
	total := 0.0
	for i := 0; i < target; i++ {
		pos, ok := l.Locate(i)
		if !ok {
			break
		}
		total += pos.Level.Threshold
	}
	return total
}

func (l *Ladder) realmIndex(id string) int {
	for i, r := range l.Realms {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Title is a display name like "Qi Gathering Middle Stage".
func (p Position) Title() string {
	if p.Level.Name != "" {
		return p.Realm.Name + " " + p.Level.Name
	}
	return p.Realm.Name
}
