package core

import (
	"sort"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
)

// moveCandidates indexes the one-side-only files of one side that are
// eligible as ends of a move pair.
type moveCandidates struct {
	// byPath indexes candidates by their relative path on the side.
	byPath map[string]*FilePair
	// withPrint lists candidates carrying a non-zero file print, pending
	// duplicate purging.
	withPrint []*FilePair
	// byPrint indexes candidates by file print after duplicate purging.
	byPrint map[uint64]*FilePair
	// side is the side being indexed.
	side Side
}

// DetectMoves pairs one-side-only deletions with one-side-only creations
// when file-identity evidence lines up, linking the two pairs through mutual
// move references. It is only meaningful when a last-sync database is
// available, since the database provides the identity evidence; callers
// without a database must not invoke it.
//
// For each database record, each side is probed first by path and then by
// file print. Path-based candidates must match the record's size and time
// exactly - no FAT tolerance - since the recorded values are either scan
// metadata or estimates captured at copy time, both exact at second
// precision, and tolerance here would permit transitively-equal-but-not-
// truly-identical chains. Print-based candidates rely on print uniqueness,
// which is guaranteed by a purge pass: any run of two or more candidates
// sharing a print (hardlink or alias ambiguities that would yield false
// pairings) has the prints of all members cleared, not just the surplus
// ones.
func DetectMoves(base *BaseFolderPair, db *InSyncFolder, compare *CompareConfig) {
	// Collect candidates for both sides in a single tree walk.
	candidates := [2]*moveCandidates{
		{byPath: make(map[string]*FilePair), side: SideLeft},
		{byPath: make(map[string]*FilePair), side: SideRight},
	}
	base.Walk(func(pair Pair) {
		file, ok := pair.(*FilePair)
		if !ok {
			return
		}
		for _, c := range candidates {
			attributes := file.Attributes(c.side)
			if attributes == nil || file.PresentOnSide(c.side.Opposite()) {
				continue
			}
			c.byPath[file.RelPathOnSide(c.side)] = file
			if attributes.FilePrint != 0 {
				c.withPrint = append(c.withPrint, file)
			}
		}
	})

	// Purge duplicate prints and build the print indices.
	for _, c := range candidates {
		c.purgeDuplicatePrints()
	}

	// Probe both sides with every database record.
	linkMovesForFolder("", db, candidates, compare)
}

// purgeDuplicatePrints sorts the print-carrying candidates, clears the
// prints of every member of any equal-print run, and indexes the remaining
// unique-print candidates.
func (c *moveCandidates) purgeDuplicatePrints() {
	side := c.side
	sort.Slice(c.withPrint, func(i, j int) bool {
		return c.withPrint[i].Attributes(side).FilePrint < c.withPrint[j].Attributes(side).FilePrint
	})

	c.byPrint = make(map[uint64]*FilePair, len(c.withPrint))
	for i := 0; i < len(c.withPrint); {
		// Determine the extent of the run sharing this print.
		print := c.withPrint[i].Attributes(side).FilePrint
		j := i + 1
		for j < len(c.withPrint) && c.withPrint[j].Attributes(side).FilePrint == print {
			j++
		}

		if j-i > 1 {
			// Refuse to guess: clear the prints of all members of the run.
			for k := i; k < j; k++ {
				c.withPrint[k].Attributes(side).FilePrint = 0
			}
		} else {
			c.byPrint[print] = c.withPrint[i]
		}
		i = j
	}
}

// find locates a candidate for a database record on the side, trying the
// path index first and the print index second.
func (c *moveCandidates) find(relPath string, record *InSyncFile, descr DescrFile) *FilePair {
	// Path lookup takes priority. The candidate must match the recorded size
	// and time exactly.
	if candidate, ok := c.byPath[relPath]; ok {
		attributes := candidate.Attributes(c.side)
		if attributes.Size == record.Size && attributes.ModTime == descr.ModTime {
			return candidate
		}
	}

	// Fall back to the print index.
	if descr.FilePrint != 0 {
		if candidate, ok := c.byPrint[descr.FilePrint]; ok {
			return candidate
		}
	}

	// No candidate.
	return nil
}

// linkMovesForFolder probes both sides with each of a database folder's file
// records and recurses into child folder records. Straw-man folder records
// remain traversable for their descendants.
func linkMovesForFolder(relPath string, db *InSyncFolder, candidates [2]*moveCandidates, compare *CompareConfig) {
	if db == nil {
		return
	}

	for name, record := range db.Files {
		// The record itself must still be acceptable under the current
		// comparison variant to serve as pairing evidence.
		if !compare.stillInSync(record) {
			continue
		}

		recordPath := name
		if relPath != "" {
			recordPath = filesystem.JoinPath(relPath, name)
		}

		// Probe both sides. A usable pairing needs one candidate per side,
		// and candidates that are already paired are skipped.
		leftCandidate := candidates[SideLeft].find(recordPath, record, record.Left)
		rightCandidate := candidates[SideRight].find(recordPath, record, record.Right)
		if leftCandidate == nil || rightCandidate == nil || leftCandidate == rightCandidate {
			continue
		}
		if leftCandidate.moveRef != 0 || rightCandidate.moveRef != 0 {
			continue
		}

		// Link the pair through mutual move references.
		leftCandidate.moveRef = rightCandidate.ID()
		rightCandidate.moveRef = leftCandidate.ID()
	}

	for name, child := range db.Folders {
		childPath := name
		if relPath != "" {
			childPath = filesystem.JoinPath(relPath, name)
		}
		linkMovesForFolder(childPath, child, candidates, compare)
	}
}
