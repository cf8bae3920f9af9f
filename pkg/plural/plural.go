// Package plural implements the Russian three-class plural rule used when
// rendering counted nouns ("1 заметка", "2 заметки", "5 заметок").
package plural

// Pick selects the grammatical form of a noun for count n.
//
// The classes follow the standard Slavic rule:
//   - n%10 == 1 and n%100 != 11        -> one  (1, 21, 101 заметка)
//   - n%10 in 2..4 and n%100 not 11..14 -> few (2, 23, 104 заметки)
//   - everything else                   -> many (5, 11, 100 заметок)
func Pick(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	switch {
	case n%10 == 1 && n%100 != 11:
		return one
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 11 || n%100 > 14):
		return few
	default:
		return many
	}
}

// Notes returns the form of the word "заметка" for count n.
func Notes(n int64) string {
	return Pick(n, "заметка", "заметки", "заметок")
}
