package diffkit

// diffKeys computes a minimal edit script transforming old into next
// using the greedy Myers O(ND) algorithm (N = combined length, D = edit
// distance).
//
// The script is minimal and deterministic: where two minimal scripts
// exist, ties are broken by preferring removals, which keeps matched
// elements closest to the origin index. Removals are reported in
// ascending old offsets, insertions in ascending new offsets.
//
// Callers must have validated key uniqueness; diffKeys itself assumes
// well-formed input.
func diffKeys(old, next []string) Changeset {
	n, m := len(old), len(next)
	max := n + m
	if max == 0 {
		return Changeset{}
	}

	// v[offset+k] holds the furthest x reached on diagonal k.
	offset := max
	v := make([]int, 2*max+1)

	// trace[d] snapshots v after step d; backtracking at step d reads
	// the d-1 snapshot.
	trace := make([][]int, 0, max+1)

	endD := -1
search:
	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				// Down: consume one element of next (insertion).
				x = v[offset+k+1]
			} else {
				// Right: consume one element of old (removal).
				// Taken on ties, so removals are preferred.
				x = v[offset+k-1] + 1
			}
			y := x - k

			// Follow the snake of matching elements.
			for x < n && y < m && old[x] == next[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				trace = append(trace, append([]int(nil), v...))
				endD = d
				break search
			}
		}
		trace = append(trace, append([]int(nil), v...))
	}

	if endD <= 0 {
		// Sequences are identical (d = 0).
		return Changeset{}
	}

	// Backtrack from (n, m) to (0, 0) collecting edits in reverse.
	var removals, insertions []Change
	x, y := n, m
	for d := endD; d > 0; d-- {
		prev := trace[d-1]
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		// Walk back through the snake.
		for x > prevX && y > prevY {
			x--
			y--
		}

		if prevK == k+1 {
			// Arrived via a down move: next[y-1] was inserted.
			y--
			insertions = append(insertions, Change{Key: next[y], Index: y})
		} else {
			// Arrived via a right move: old[x-1] was removed.
			x--
			removals = append(removals, Change{Key: old[x], Index: x})
		}
	}

	reverseChanges(removals)
	reverseChanges(insertions)
	return Changeset{Removals: removals, Insertions: insertions}
}

func reverseChanges(cs []Change) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}
