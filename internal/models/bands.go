package models

// GradeBand maps an inclusive score range to a letter grade and remark.
// Bounds are whole marks; together the bands partition [0,100].
type GradeBand struct {
	ID       string `db:"id" json:"id"`
	Position int    `db:"position" json:"position"`
	MinMark  int    `db:"min_mark" json:"min_mark"`
	MaxMark  int    `db:"max_mark" json:"max_mark"`
	Letter   string `db:"letter" json:"letter"`
	Remark   string `db:"remark" json:"remark"`
}

// Contains reports whether score falls inside the band's inclusive range.
func (b GradeBand) Contains(score float64) bool {
	return score >= float64(b.MinMark) && score <= float64(b.MaxMark)
}
